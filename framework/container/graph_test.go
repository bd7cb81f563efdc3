package container_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

func TestDescribe(t *testing.T) {
	c := container.New()
	layered(c, &recorder{})
	c.Singleton("cache", []string{"logger"}, func(args []any) (any, error) { return nil, nil })
	c.Alias("logger", "log")
	c.Defer([]string{"mailer"}, func() error { return nil })

	nodes := c.Describe()
	byName := make(map[string]container.Node, len(nodes))
	var names []string
	for _, n := range nodes {
		byName[n.Name] = n
		names = append(names, n.Name)
	}

	assert.Equal(t, []string{"cache", "container", "logger", "mailer", "repo", "service"}, names)
	assert.Equal(t, container.Node{Name: "container", Kind: "value"}, byName["container"])
	assert.Equal(t, container.Node{Name: "logger", Kind: "factory", Aliases: []string{"log"}}, byName["logger"])
	assert.Equal(t, []string{"logger"}, byName["repo"].Deps)
	assert.True(t, byName["cache"].Shared)
	assert.Equal(t, "deferred", byName["mailer"].Kind)
}

func TestValidate_OK(t *testing.T) {
	c := container.New()
	rec := &recorder{}
	layered(c, rec)

	require.NoError(t, c.Validate())
	assert.Empty(t, rec.calls, "Validate must not build anything")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := container.New()
	c.Bind("x", []string{"y"}, func(args []any) (any, error) { return nil, nil })
	c.Bind("y", []string{"x"}, func(args []any) (any, error) { return nil, nil })
	c.Bind("repo", []string{"db"}, func(args []any) (any, error) { return nil, nil })

	err := c.Validate()
	require.Error(t, err)

	var unknown *container.UnknownDependencyError
	assert.True(t, stderrors.As(err, &unknown))
	assert.Equal(t, "db", unknown.Name)

	var cycle *container.CyclicDependencyError
	assert.True(t, stderrors.As(err, &cycle))
	assert.Contains(t, err.Error(), "x -> y -> x")
	assert.Contains(t, err.Error(), "y -> x -> y")
}

func TestValidate_DoesNotLoadDeferred(t *testing.T) {
	c := container.New()
	loaded := false
	c.Defer([]string{"mailer"}, func() error {
		loaded = true
		return nil
	})
	c.Bind("notifier", []string{"mailer"}, func(args []any) (any, error) { return nil, nil })

	require.NoError(t, c.Validate())
	assert.False(t, loaded)
}
