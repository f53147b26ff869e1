// Package goldlog records purchases of a commodity (gold by default) and keeps
// the list across runs in a durable key-value slot. It is local-first: the data
// lives in a folder or a sqlite file owned by the user.
//
// The package is made of two parts:
//   - Store owns the ordered list of purchases. It hydrates the list once from
//     its slot at startup, and writes the whole list back to the slot after every
//     change. Until hydration has completed the Store refuses mutations, so that
//     the empty initial list can never overwrite previously saved data.
//   - Form holds the three free-text inputs of a purchase (date, price,
//     quantity). Submit checks that none is blank and appends a new Purchase to
//     the Store.
//
// Outcomes the user should see (success, invalid input, unreadable or
// unwritable storage) are reported through a Notifier. None of them is fatal.
//
// This package serves as the foundational logic for the `gold` command-line
// tool.
package goldlog
