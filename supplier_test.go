package haywire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycles(t *testing.T) {
	alphaID := Identifier[*Alpha]()
	betaID := Identifier[*Beta]()
	betaBinding := Must(Bind(betaID).
		WithDependencies(alphaID).
		Scoped(SingletonScope).
		WithProvider(func(a *Alpha) *Beta {
			return &Beta{alpha: a}
		}))

	t.Run("it should refuse direct cycles", func(t *testing.T) {
		// GIVEN
		m := MustModule(
			Must(Bind(alphaID).WithDependencies(betaID).WithProvider(func(b *Beta) *Alpha {
				return &Alpha{beta: b}
			})),
			betaBinding,
		)

		// WHEN
		_, err := m.ToContainer()

		// THEN
		require.ErrorIs(t, err, ErrGraphCycle)
		var cycleErr *GraphCycleError
		require.ErrorAs(t, err, &cycleErr)
		require.Len(t, cycleErr.Cycles, 1)
		assert.Equal(t, []Key{alphaID.Key(), betaID.Key(), alphaID.Key()}, cycleErr.Cycles[0])
		assert.Contains(t, err.Error(), "*haywire.Alpha -> *haywire.Beta -> *haywire.Alpha")
	})

	t.Run("it should refuse self dependencies and list distinct cycles once", func(t *testing.T) {
		// GIVEN
		selfID := Identifier[*Clock]().Named("self")
		m := MustModule(
			Must(Bind(selfID).WithDependencies(selfID).WithProvider(func(c *Clock) *Clock { return c })),
			Must(Bind(alphaID).WithDependencies(betaID).WithProvider(func(b *Beta) *Alpha { return nil })),
			betaBinding,
		)

		// WHEN
		_, err := m.ToContainer()

		// THEN
		var cycleErr *GraphCycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, [][]Key{
			{selfID.Key(), selfID.Key()},
			{alphaID.Key(), betaID.Key(), alphaID.Key()},
		}, cycleErr.Cycles)
	})

	t.Run("it should break cycles with suppliers", func(t *testing.T) {
		// GIVEN
		c, err := MustModule(
			Must(Bind(alphaID).
				WithDependencies(SupplierOf(betaID)).
				Scoped(SingletonScope).
				WithProvider(func(next Supplier[*Beta]) *Alpha {
					return &Alpha{next: next}
				})),
			betaBinding,
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		alpha, err := Get(c, alphaID)
		require.NoError(t, err)
		supplied, err := alpha.next()

		// THEN
		require.NoError(t, err)
		assert.Same(t, alpha, supplied.alpha)
		direct, err := Get(c, betaID)
		require.NoError(t, err)
		assert.Same(t, direct, supplied)
	})
}

func TestSuppliers(t *testing.T) {
	t.Run("it should resolve unscoped targets again on every call", func(t *testing.T) {
		// GIVEN
		var clocks counter
		c, err := MustModule(
			Must(Bind(clockID).WithDependencies().WithProvider(clocks.clockProvider())),
		).ToContainer()
		require.NoError(t, err)
		supplier, err := Get(c, SupplierOf(clockID))
		require.NoError(t, err)
		assert.Equal(t, 0, clocks.count())

		// WHEN
		c1, err1 := supplier()
		c2, err2 := supplier()

		// THEN
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotSame(t, c1, c2)
		assert.Equal(t, 2, clocks.count())
	})

	t.Run("it should share the request scope with propagating suppliers only", func(t *testing.T) {
		type desk struct {
			Clock       *Clock
			Logger      *Logger
			Propagating Supplier[*Service]
			Isolated    Supplier[*Service]
		}
		deskID := Identifier[*desk]()

		// GIVEN
		var clocks counter
		c, err := MustModule(
			clockBinding(RequestScope, &clocks),
			Must(Bind(loggerID).WithDependencies().Scoped(SupplierScope).WithProvider(NewLogger)),
			Must(Bind(serviceID).WithDependencies(loggerID, clockID).WithConstructorProvider()),
			Must(Bind(deskID).
				WithDependencies(clockID, loggerID, SupplierOf(serviceID).Propagating(), SupplierOf(serviceID)).
				WithConstructorProvider()),
		).ToContainer()
		require.NoError(t, err)
		d, err := Get(c, deskID)
		require.NoError(t, err)

		// WHEN
		s1, err1 := d.Propagating()
		s2, err2 := d.Propagating()
		isolated, err3 := d.Isolated()

		// THEN
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.NoError(t, err3)
		assert.Same(t, d.Clock, s1.Clock)
		assert.Same(t, d.Clock, s2.Clock)
		assert.NotSame(t, d.Clock, isolated.Clock)
		assert.Equal(t, 2, clocks.count())
	})

	t.Run("it should not share supplier scoped values with propagating suppliers", func(t *testing.T) {
		type desk struct {
			Logger  *Logger
			Service Supplier[*Service]
		}
		deskID := Identifier[*desk]()

		// GIVEN
		var loggers counter
		c, err := MustModule(
			Bind(clockID).WithInstance(&Clock{}),
			Must(Bind(loggerID).WithDependencies().Scoped(SupplierScope).WithProvider(func() *Logger {
				loggers.calls.Add(1)
				return NewLogger()
			})),
			Must(Bind(serviceID).WithDependencies(loggerID, clockID).WithConstructorProvider()),
			Must(Bind(deskID).
				WithDependencies(loggerID, SupplierOf(serviceID).Propagating()).
				WithConstructorProvider()),
		).ToContainer()
		require.NoError(t, err)
		d, err := Get(c, deskID)
		require.NoError(t, err)

		// WHEN
		s1, err1 := d.Service()
		s2, err2 := d.Service()

		// THEN
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotSame(t, d.Logger, s1.Logger)
		assert.NotSame(t, s1.Logger, s2.Logger)
		assert.Equal(t, 3, loggers.count())
	})

	t.Run("it should resolve asynchronous targets with an asynchronous supplier", func(t *testing.T) {
		// GIVEN
		var clocks counter
		type watch struct {
			Clock AsyncSupplier[*Clock]
		}
		watchID := Identifier[*watch]()
		c, err := MustModule(
			Bind(clockID).Scoped(SingletonScope).WithAsyncGenerator(clocks.asyncClock()),
			Must(Bind(watchID).WithDependencies(AsyncSupplierOf(clockID)).WithConstructorProvider()),
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		w, err := Get(c, watchID)
		require.NoError(t, err)
		c1, err1 := w.Clock(context.Background())
		c2, err2 := w.Clock(context.Background())

		// THEN
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Same(t, c1, c2)
		assert.Equal(t, 1, clocks.count())
	})

	t.Run("it should refuse synchronous suppliers of asynchronous bindings", func(t *testing.T) {
		// GIVEN
		m := MustModule(
			Bind(clockID).Scoped(SingletonScope).WithAsyncGenerator(func(ctx context.Context) (*Clock, error) {
				return &Clock{}, nil
			}),
			Must(Bind(loggerID).WithDependencies(SupplierOf(clockID)).WithProvider(func(Supplier[*Clock]) *Logger {
				return NewLogger()
			})),
		)

		// WHEN
		_, err := m.ToContainer()

		// THEN
		require.ErrorIs(t, err, ErrSyncSupplier)
		assert.Contains(t, err.Error(), "*haywire.Clock(supplier(sync)) (required by *haywire.Logger)")
	})

	t.Run("it should accept synchronous suppliers of asynchronous optimistic singletons once preloaded", func(t *testing.T) {
		// GIVEN
		c, err := MustModule(
			Bind(clockID).Scoped(OptimisticSingletonScope).WithAsyncGenerator(func(ctx context.Context) (*Clock, error) {
				return &Clock{}, nil
			}),
			Must(Bind(serviceID).WithDependencies(SupplierOf(clockID)).WithProvider(func(clock Supplier[*Clock]) (*Service, error) {
				c, err := clock()
				return &Service{Clock: c}, err
			})),
		).ToContainer()
		require.NoError(t, err)
		_, err = Get(c, serviceID)
		require.ErrorIs(t, err, ErrAsyncResolution)

		// WHEN
		require.NoError(t, c.PreloadAsync(context.Background()))
		s, err := Get(c, serviceID)

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, s.Clock)
	})
}

func TestOptional(t *testing.T) {
	t.Run("it should resolve an empty optional when nothing is bound", func(t *testing.T) {
		// GIVEN
		c, err := MustModule(
			Must(Bind(serviceID).
				WithDependencies(OptionalOf(clockID)).
				WithProvider(func(clock Optional[*Clock]) *Service {
					return &Service{Clock: clock.OrElse(&Clock{})}
				})),
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		s, err := Get(c, serviceID)
		opt, optErr := Get(c, OptionalOf(clockID))

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, s.Clock)
		require.NoError(t, optErr)
		assert.False(t, opt.IsPresent())
	})

	t.Run("it should resolve the bound value", func(t *testing.T) {
		// GIVEN
		clock := &Clock{}
		c, err := MustModule(Bind(clockID).WithInstance(clock)).ToContainer()
		require.NoError(t, err)

		// WHEN
		opt, err := Get(c, OptionalOf(clockID))

		// THEN
		require.NoError(t, err)
		v, found := opt.Get()
		assert.True(t, found)
		assert.Same(t, clock, v)
		assert.Equal(t, Some(clock), opt)
	})
}

func TestCollections(t *testing.T) {
	greeterID := Identifier[Greeter]()

	t.Run("it should resolve every binding of a contract ordered by name", func(t *testing.T) {
		// GIVEN
		c, err := MustModule(
			Bind(greeterID.Named("fr")).WithInstance(frenchGreeter{}),
			Bind(greeterID.Named("en")).WithInstance(englishGreeter{}),
			Bind(Identifier[Greeter](Tagged("other"))).WithInstance(englishGreeter{}),
		).ToContainer()
		require.NoError(t, err)

		// WHEN
		greeters, err := Get(c, AllOf(greeterID))

		// THEN
		require.NoError(t, err)
		require.Len(t, greeters, 2)
		assert.Equal(t, "hello bob", greeters[0].Greet("bob"))
		assert.Equal(t, "bonjour bob", greeters[1].Greet("bob"))
	})

	t.Run("it should resolve an empty collection when nothing is bound", func(t *testing.T) {
		// GIVEN
		c, err := MustModule(Bind(clockID).WithInstance(&Clock{})).ToContainer()
		require.NoError(t, err)

		// WHEN
		greeters, err := Get(c, AllOf(greeterID))

		// THEN
		require.NoError(t, err)
		assert.Empty(t, greeters)
	})

	t.Run("it should supply the current set of handlers", func(t *testing.T) {
		// GIVEN
		var clocks counter
		type registry struct {
			Handlers Supplier[[]*Clock]
		}
		registryID := Identifier[*registry]()
		c, err := MustModule(
			Must(Bind(clockID.Named("a")).WithDependencies().WithProvider(clocks.clockProvider())),
			Must(Bind(clockID.Named("b")).WithDependencies().WithProvider(clocks.clockProvider())),
			Must(Bind(registryID).WithDependencies(SupplierOf(AllOf(clockID))).WithConstructorProvider()),
		).ToContainer()
		require.NoError(t, err)
		r := MustGet(c, registryID)
		assert.Equal(t, 0, clocks.count())

		// WHEN
		handlers, err := r.Handlers()

		// THEN
		require.NoError(t, err)
		assert.Len(t, handlers, 2)
		assert.Equal(t, 2, clocks.count())
	})

	t.Run("it should detect cycles going through collections", func(t *testing.T) {
		// GIVEN
		m := MustModule(
			Must(Bind(clockID.Named("a")).WithDependencies(AllOf(clockID)).WithProvider(func([]*Clock) *Clock {
				return &Clock{}
			})),
		)

		// WHEN
		_, err := m.ToContainer()

		// THEN
		require.ErrorIs(t, err, ErrGraphCycle)
	})
}
