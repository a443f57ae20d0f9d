// Package models defines the library catalog entities exchanged with the API and
// the view-model metadata libcat layers on top of them.
//
// The package contains three categories of types:
//
// 1. Response entities mirroring the server's JSON:
//   - [Book] : a catalog entry owned by the user who created it
//   - [Reader] : a library patron with a currently-reading list
//   - [User] / [AuthResponse] : the signed-in account and login result
//
// 2. Input DTOs validated client-side before any request is sent:
//   - [BookInput], [ReaderInput], [RegisterInput], [LoginInput]
//
// 3. List view tables: [BookFields] and [ReaderFields] return the search and
// sort capabilities used to build a [listview.Model] for each collection.
package models
