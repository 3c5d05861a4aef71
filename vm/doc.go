// Package vm implements the value model of the garnet runtime.
//
// This package contains:
//   - The Value union and the Object header (identity, class, attributes,
//     singleton methods)
//   - Control-flow signals and the frame rules that consume them
//   - The weakly held symbol table
//   - Modules, method lookup and method_missing dispatch
//   - Equality, ordering, arithmetic, cloning and serialization
//   - String interpolation and literal materialization
//   - Predicate-driven quicksort and insertion sort
package vm
