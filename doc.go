// Package sensitivestring provides SensitiveString, a value type for
// passwords, API keys and tokens that renders as a SHA-256 digest everywhere
// a value is rendered implicitly.
//
//	password := sensitivestring.New("my-secret-password")
//	fmt.Println(password)          // sha256:a9c90c47...
//	fmt.Printf("%#v\n", password)  // SensitiveString(sha256:a9c90c47...)
//	json.Marshal(creds)            // {"password":"sha256:a9c90c47..."}
//	password.Reveal()              // "my-secret-password"
//
// The digest lets operators tell secrets apart in logs and diffs without
// exposing them. Reveal (or its alias Value) is the only accessor for the
// plaintext, so every intentional use of a secret can be found with grep.
//
// Serialization goes through encoding.TextMarshaler, which encoding/json,
// encoding/xml, gopkg.in/yaml.v3 and the log/slog handlers all use. The type
// does not implement any decoding interface; decode secrets into plain string
// fields and wrap them with New.
//
// The package also resolves secrets from the environment, files, the system
// keyring, shell commands and age-encrypted files straight into a
// SensitiveString, so the plaintext is never held in a bare string by the
// caller. See Resolver and Load.
//
// Wrapping a value is protection against accidental exposure only. It does
// not encrypt the value, it does not clear memory, and it does not stop
// code that calls Reveal.
package sensitivestring
