package haywire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	t.Run("it should be equal for the same contract", func(t *testing.T) {
		// WHEN
		id1 := Identifier[*Logger]()
		id2 := Identifier[*Logger]()

		// THEN
		assert.Equal(t, id1.Key(), id2.Key())
	})

	t.Run("it should not mutate the identifier when naming it", func(t *testing.T) {
		// GIVEN
		id := Identifier[*Logger]()

		// WHEN
		named := id.Named("audit")

		// THEN
		assert.NotEqual(t, id.Key(), named.Key())
		assert.Equal(t, "", id.Key().Name())
		assert.Equal(t, "audit", named.Key().Name())
		assert.Equal(t, named.Key(), Identifier[*Logger]().Named("audit").Key())
	})

	t.Run("it should distinguish tagged contracts of the same type", func(t *testing.T) {
		// WHEN
		plain := Identifier[string]()
		tagged := Identifier[string](Tagged("db-url"))

		// THEN
		assert.NotEqual(t, plain.Key(), tagged.Key())
		assert.Equal(t, tagged.Key(), Identifier[string](Tagged("db-url")).Key())
		assert.Equal(t, "string[db-url]", tagged.String())
	})

	t.Run("it should create identifiers equal to nothing else with unique", func(t *testing.T) {
		// WHEN
		id1 := Identifier[string](Unique())
		id2 := Identifier[string](Unique())

		// THEN
		assert.NotEqual(t, id1.Key(), id2.Key())
		assert.NotEqual(t, Identifier[string]().Key(), id1.Key())
	})

	t.Run("it should format identifiers", func(t *testing.T) {
		// GIVEN
		id := Identifier[*Logger]().Named("main")

		// WHEN / THEN
		assert.Equal(t, "*haywire.Logger", Identifier[*Logger]().String())
		assert.Equal(t, "*haywire.Logger(named: main)", id.String())
		assert.Equal(t, "*haywire.Logger(named: main, supplier(sync))", SupplierOf(id).String())
		assert.Equal(t, "*haywire.Logger(named: main, supplier(async))", AsyncSupplierOf(id).String())
		assert.Equal(t, "*haywire.Logger(supplier(sync, propagating))", SupplierOf(Identifier[*Logger]()).Propagating().String())
		assert.Equal(t, "*haywire.Logger(named: main, optional)", OptionalOf(id).String())
		assert.Equal(t, "*haywire.Logger(all)", AllOf(id).String())
		assert.Equal(t, "*haywire.Logger(all, supplier(sync))", SupplierOf(AllOf(id)).String())
		assert.Equal(t, "haywire.Greeter", Identifier[Greeter]().String())
	})
}

func TestDerivedIdentifiers(t *testing.T) {
	t.Run("it should target the original identifier from a supplier", func(t *testing.T) {
		// GIVEN
		id := Identifier[*Clock]().Named("utc")

		// WHEN
		supplier := SupplierOf(id)

		// THEN
		assert.True(t, supplier.Key().IsDeferred())
		assert.False(t, supplier.Key().IsAsyncDeferred())
		assert.Equal(t, id.Key(), supplier.Key().Target())
		assert.Equal(t, id.Key(), supplier.Key().Base())
		assert.Equal(t, TypeOf[Supplier[*Clock]](), supplier.Key().Type())
	})

	t.Run("it should target the wrapped identifier from a supplier of a collection", func(t *testing.T) {
		// GIVEN
		all := AllOf(Identifier[Greeter]())

		// WHEN
		supplier := AsyncSupplierOf(all)

		// THEN
		assert.True(t, supplier.Key().IsAsyncDeferred())
		assert.Equal(t, all.Key(), supplier.Key().Target())
		assert.Equal(t, TypeOf[[]Greeter](), supplier.Key().Target().Type())
	})

	t.Run("it should drop the name of collections", func(t *testing.T) {
		// WHEN
		all := AllOf(Identifier[Greeter]().Named("english"))

		// THEN
		assert.Equal(t, AllOf(Identifier[Greeter]()).Key(), all.Key())
		assert.True(t, all.Key().IsCollection())
	})

	t.Run("it should refuse to derive derived identifiers twice", func(t *testing.T) {
		// GIVEN
		id := Identifier[*Clock]()

		// WHEN / THEN
		assert.Panics(t, func() { SupplierOf(SupplierOf(id)) })
		assert.Panics(t, func() { OptionalOf(OptionalOf(id)) })
		assert.Panics(t, func() { AllOf(SupplierOf(id)) })
		assert.Panics(t, func() { AllOf(id).Named("x") })
		assert.Panics(t, func() { id.Propagating() })
	})

	t.Run("it should distinguish propagating suppliers and target the same identifier", func(t *testing.T) {
		// GIVEN
		id := Identifier[*Clock]()

		// WHEN
		propagating := AsyncSupplierOf(id).Propagating()

		// THEN
		assert.True(t, propagating.Key().Propagates())
		assert.False(t, AsyncSupplierOf(id).Key().Propagates())
		assert.NotEqual(t, AsyncSupplierOf(id).Key(), propagating.Key())
		assert.Equal(t, id.Key(), propagating.Key().Target())
		assert.False(t, propagating.Key().Target().Propagates())
	})
}
