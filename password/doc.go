// Package password wraps bcrypt credential hashing behind a small,
// configuration-validated API. Digests are self-describing (cost is embedded
// in the digest), so Verify needs no configuration beyond the digest itself.
package password
