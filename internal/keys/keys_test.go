package keys

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	for _, k := range []string{"626a81ce9a8cd1920641e275", "1027424", "Выпечка", ""} {
		assert.Equal(t, Derive(k), Derive(k), k)
	}
}

func TestDeriveMatchesNameBasedV3(t *testing.T) {
	// uuid3(NAMESPACE_X500, "1027424") as computed by other RFC 4122 implementations.
	got := Derive("1027424")
	assert.Equal(t, uuid.Version(3), got.Version())
	assert.Equal(t, uuid.RFC4122, got.Variant())
	assert.Equal(t, uuid.MustParse("32e33f30-279c-3163-ac25-f92711d91f54"), got)
}

func TestDeriveDistinctKeys(t *testing.T) {
	seen := make(map[uuid.UUID]string)
	for i := 0; i < 10000; i++ {
		k := fmt.Sprintf("product-%d", i)
		pk := Derive(k)
		prev, dup := seen[pk]
		require.False(t, dup, "%q and %q collide", prev, k)
		seen[pk] = k
	}
}

func TestDeriveLinkIsRoleOrderSensitive(t *testing.T) {
	product := Derive("p1")
	category := Derive("Супы")

	assert.Equal(t, DeriveLink(product, category), DeriveLink(product, category))
	assert.NotEqual(t, DeriveLink(product, category), DeriveLink(category, product))
	assert.Equal(t, Derive(product.String()+"/"+category.String()), DeriveLink(product, category))
}

func TestSetCollapsesDuplicates(t *testing.T) {
	a, b := Derive("a"), Derive("b")

	s := NewSet(a, b, a)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Add(b))
	assert.True(t, s.Add(Derive("c")))
	assert.Equal(t, []uuid.UUID{a, b, Derive("c")}, s.Keys())
	assert.Equal(t, []string{a.String(), b.String(), Derive("c").String()}, s.Strings())
	assert.True(t, s.Has(a))
	assert.False(t, s.Has(Derive("d")))
}

func TestZeroSetIsUsable(t *testing.T) {
	var s Set
	assert.True(t, s.Add(Derive("x")))
	assert.Equal(t, 1, s.Len())
}
