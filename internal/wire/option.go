// Copyright 2024 The TagWire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

// Option is the presence container generated code uses for an optional
// field: present on neither, either, or both of the Out and In flavors of
// a declaration, unlike an asymmetric field, which is always present on
// Out and only conditionally present on In.
type Option[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Option wrapping v.
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Present: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}
