package assoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aerocode/internal/assoc"
)

func TestAssociateIsIdempotent(t *testing.T) {
	crew := assoc.New[string, string]()
	assert.True(t, crew.Associate("stage-1", "emp-1"))
	assert.False(t, crew.Associate("stage-1", "emp-1"))
	assert.Equal(t, []string{"emp-1"}, crew.Partners("stage-1"))
	assert.Equal(t, []string{"stage-1"}, crew.Referrers("emp-1"))
}

func TestPartnersKeepFirstAssociationOrder(t *testing.T) {
	crew := assoc.New[string, string]()
	crew.Associate("s", "b")
	crew.Associate("s", "a")
	crew.Associate("s", "c")
	crew.Associate("s", "a")
	assert.Equal(t, []string{"b", "a", "c"}, crew.Partners("s"))
}

func TestDisassociate(t *testing.T) {
	crew := assoc.New[string, string]()
	crew.Associate("s", "a")
	crew.Associate("t", "a")

	assert.True(t, crew.Disassociate("s", "a"))
	assert.False(t, crew.Disassociate("s", "a"))
	assert.False(t, crew.Linked("s", "a"))
	assert.Empty(t, crew.Partners("s"))
	assert.Equal(t, []string{"t"}, crew.Referrers("a"))

	assert.True(t, crew.Associate("s", "a"))
	assert.Equal(t, []string{"t", "s"}, crew.Referrers("a"))
}

func TestClearOwnerAndPartner(t *testing.T) {
	l := assoc.New[string, string]()
	l.Associate("p1", "e1")
	l.Associate("p1", "e2")
	l.Associate("p2", "e1")

	l.ClearOwner("p1")
	assert.Empty(t, l.Partners("p1"))
	assert.Equal(t, []string{"p2"}, l.Referrers("e1"))
	assert.Empty(t, l.Referrers("e2"))

	l.ClearPartner("e1")
	assert.Empty(t, l.Partners("p2"))
}

func TestPartnersReturnsCopy(t *testing.T) {
	l := assoc.New[string, string]()
	l.Associate("a", "x")
	got := l.Partners("a")
	got[0] = "mutated"
	assert.Equal(t, []string{"x"}, l.Partners("a"))
}
