package container

import (
	"reflect"

	"github.com/km-arc/go-inject/framework/errors"
)

// Typed constructor adapters. They turn ordinary Go constructors into
// Constructors, checking each resolved dependency against the parameter type.
//
//	c.Bind("userService", []string{"userRepository"}, container.Ctor1(users.NewService))

// Ctor0 adapts a constructor without dependencies.
func Ctor0[R any](fn func() R) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return fn(), nil
	}
}

// Ctor1 adapts a constructor taking one dependency.
func Ctor1[A, R any](fn func(A) R) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}
}

// Ctor2 adapts a constructor taking two dependencies.
func Ctor2[A, B, R any](fn func(A, B) R) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

// Ctor3 adapts a constructor taking three dependencies.
func Ctor3[A, B, C, R any](fn func(A, B, C) R) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 3); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		return fn(a, b, c), nil
	}
}

// CtorE0 adapts a fallible constructor without dependencies.
func CtorE0[R any](fn func() (R, error)) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return result(fn())
	}
}

// CtorE1 adapts a fallible constructor taking one dependency.
func CtorE1[A, R any](fn func(A) (R, error)) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return result(fn(a))
	}
}

// CtorE2 adapts a fallible constructor taking two dependencies.
func CtorE2[A, B, R any](fn func(A, B) (R, error)) Constructor {
	return func(args []any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return result(fn(a, b))
	}
}

func result[R any](r R, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func arity(args []any, want int) error {
	if len(args) != want {
		return errors.Newf(errors.ErrTypeMismatch,
			"constructor takes %d dependencies, binding declares %d", want, len(args))
	}
	return nil
}

// arg returns args[i] as T. A nil dependency becomes T's zero value.
func arg[T any](args []any, i int) (T, error) {
	var zero T
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, errors.Newf(errors.ErrTypeMismatch,
			"dependency %d is %T, constructor wants %s", i, args[i], reflect.TypeOf((*T)(nil)).Elem())
	}
	return v, nil
}
