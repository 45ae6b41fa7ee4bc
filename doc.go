// Package haywire wires an application from typed identifiers and immutable bindings.
//
// A binding tells how to produce the value of an identifier: a constant, a generator, a provider
// function called with its dependencies, or a constructor. Bindings are grouped in a Module, which
// is validated and turned into a Container:
//
//	loggerID := haywire.Identifier[*Logger]()
//	serviceID := haywire.Identifier[*Service]()
//
//	c, err := haywire.MustModule(
//		haywire.Bind(loggerID).Scoped(haywire.SingletonScope).WithGenerator(NewLogger),
//		haywire.Must(haywire.Bind(serviceID).WithDependencies(loggerID).WithProvider(NewService)),
//	).ToContainer()
//
//	service, err := haywire.Get(c, serviceID)
//
// Validation reports every missing binding and every dependency cycle at once. A dependency can
// be deferred with SupplierOf or AsyncSupplierOf, which also breaks cycles, made optional with
// OptionalOf, or widened to every binding of a contract with AllOf.
//
// Bindings whose strategy takes a context are asynchronous; any identifier depending on one must
// be resolved with GetAsync. Singleton values are computed at most once per container, optimistic
// singletons are cached only on success.
package haywire
