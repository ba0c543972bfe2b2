// Package repository handles all interactions with the database.
//
// A Session is the unit of work: it exposes one mapped collection (Set) per
// entity, keeps an identity map of the rows it loaded, detects changes
// against snapshots and writes them back in one transaction on SaveChanges.
// The raw SQL lives here, abstracted away from the service layer.
package repository
