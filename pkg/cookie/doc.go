// Package cookie provides plain, signed (HMAC-SHA256), and encrypted
// (AES-GCM) cookie operations with key rotation.
//
// The Manager holds an ordered secret list: the first key is used to sign
// and encrypt new cookies, while every key is tried for verification and
// decryption. Rotating keys is therefore a matter of prepending the new
// secret and keeping the old ones until their cookies expire.
//
// Oversized reports cookies whose serialized form exceeds the 4093-byte
// browser limit, so applications can surface overflow instead of letting
// browsers drop the cookie silently.
package cookie
