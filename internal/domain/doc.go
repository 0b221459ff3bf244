// Package domain contains the core entities of the navigation history model.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on storage, routing or logging and contains only the rules
// that keep the navigation stack consistent.
//
// # Entities
//
//   - [Stack]: the page pointer plus one route descriptor and one data snapshot per page
//   - [RouteDescriptor]: an immutable capture of a resolved route
//   - [Snapshot]: the per-page data a view asked to keep
//   - [Action]: the label of the most recent transition
//
// # Matching
//
// [Contains] is the structural subset match used to look up earlier pages by a
// partial route description. It works on plain value trees (maps, slices and
// primitives) and knows nothing about routes.
package domain
