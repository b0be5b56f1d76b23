package entities

type factory struct{}

var Factory factory

func (f factory) NewEntityManager(opts ...Option) *EntityManager {
	return newEntityManager(opts...)
}

// NewEntitySystemManager creates a system manager. A nil container gets an
// empty one.
func (f factory) NewEntitySystemManager(container *SystemManagerContainer, opts ...Option) *EntitySystemManager {
	return newEntitySystemManager(container, opts...)
}

func (f factory) NewContainer() *SystemManagerContainer {
	return newContainer()
}

func (f factory) NewQuery() Query {
	return newQuery()
}
