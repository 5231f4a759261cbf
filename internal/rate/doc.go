// Package rate derives the local login cooldown from the attempt counter held
// in session state.
//
// # Window semantics
//
// A caller is blocked while attempts >= MaxAttempts and less than Cooldown has
// passed since the last failed attempt. The counter itself lives in session
// state and resets on the next successful login, or on the first attempt made
// after the cooldown has lapsed ([Policy.Lapsed]).
//
// # What this package must NOT do
//
//   - Hold state. Attempt counts are owned by the session state machine.
//   - Be imported outside the goAuthClient module.
package rate
