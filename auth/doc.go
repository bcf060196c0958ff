// Package auth keeps the accounts behind the website and decides who is
// allowed to do what.
//
// Passwords are never stored, only an scrypt derived key together with the
// salt used to derive it (see Hasher). Deriving a key is expensive on purpose,
// so derivations share a bounded pool instead of running on every request
// goroutine at the same time. A burst of login attempts waits for a slot
// instead of starving the rest of the process.
//
// A successful login or registration yields an opaque session id, that id is
// what the browser keeps (as a cookie) and what is presented on every request.
// Sessions live in a SessionStore, the default one is an in-memory cache which
// means restarting the process logs everyone out. Use the redis store if that
// is not acceptable or if more than one process serves the same website.
//
// Accounts are kept by a Directory, the auth package does not care where,
// as long as username uniqueness is enforced by the Directory itself.
package auth
