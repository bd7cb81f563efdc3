package container

// When starts a contextual binding chain.
//
//	c.When("photoController").Needs("filesystem").Give(container.Factory{
//	    Deps: []string{"config"},
//	    New:  container.Ctor1(storage.NewS3),
//	})
func (c *Container) When(consumer string) *ContextualBuilder {
	return &ContextualBuilder{container: c, consumer: consumer}
}

// ContextualBuilder implements the fluent contextual binding API.
type ContextualBuilder struct {
	container *Container
	consumer  string
	needs     string
}

// Needs names the dependency the consumer should receive something else for.
func (b *ContextualBuilder) Needs(dependency string) *ContextualBuilder {
	b.needs = dependency
	return b
}

// Give sets what the consumer receives when it resolves the dependency.
// The override takes part in cycle detection like any other binding.
func (b *ContextualBuilder) Give(payload Payload) {
	if b.consumer == "" || b.needs == "" {
		panic("container: contextual binding needs both a consumer and a dependency")
	}
	override := newBinding(payload)

	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	consumer := c.canonical(b.consumer)
	if _, ok := c.contextual[consumer]; !ok {
		c.contextual[consumer] = make(map[string]*binding)
	}
	c.contextual[consumer][c.canonical(b.needs)] = override
}

// GiveValue is a shorthand for Give(Value(value)).
//
//	c.When("photoController").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(Value(value))
}
