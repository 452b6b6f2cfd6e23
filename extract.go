package sensitivestring

import "fmt"

// Text is satisfied by the two shapes a secret may arrive in.
type Text interface {
	string | SensitiveString
}

// Plaintext returns v unchanged when it is a string and v.Reveal() when it is
// a SensitiveString.
func Plaintext[T Text](v T) string {
	switch x := any(v).(type) {
	case SensitiveString:
		return x.Reveal()
	case string:
		return x
	}
	return ""
}

// Of converts input into a SensitiveString.
// A SensitiveString is returned unchanged, a *SensitiveString is dereferenced
// (nil becomes the zero value), strings and byte slices are wrapped, and any
// other value is wrapped in its fmt rendering.
func Of(input any) SensitiveString {
	switch v := input.(type) {
	case nil:
		return SensitiveString{}
	case SensitiveString:
		return v
	case *SensitiveString:
		if v == nil {
			return SensitiveString{}
		}
		return *v
	case string:
		return New(v)
	case []byte:
		return FromBytes(v)
	case fmt.Stringer:
		return New(v.String())
	default:
		return New(fmt.Sprint(v))
	}
}

// IsSensitiveString reports whether input is a SensitiveString or a non-nil
// *SensitiveString.
func IsSensitiveString(input any) bool {
	switch v := input.(type) {
	case SensitiveString:
		return true
	case *SensitiveString:
		return v != nil
	default:
		return false
	}
}

// ExtractValue returns the plaintext held by a SensitiveString, a
// *SensitiveString or a string. It returns false for nil and other types.
func ExtractValue(input any) (string, bool) {
	switch v := input.(type) {
	case SensitiveString:
		return v.Reveal(), true
	case *SensitiveString:
		if v == nil {
			return "", false
		}
		return v.Reveal(), true
	case string:
		return v, true
	default:
		return "", false
	}
}

// MustExtractValue is like ExtractValue but panics when input holds no
// plaintext.
func MustExtractValue(input any) string {
	value, ok := ExtractValue(input)
	if !ok {
		panic(fmt.Sprintf("sensitivestring: expected string or SensitiveString, got %T", input))
	}
	return value
}

// RevealAll returns a copy of data in which every SensitiveString found in
// nested map[string]any and []any values is replaced by its plaintext.
// Other values are returned as they are.
//
// Use it only where the secrets must leave the process in clear text, for
// example when building a request body for an authentication service:
//
//	body := map[string]any{
//		"username": "user",
//		"password": sensitivestring.New("secret123"),
//	}
//	json.Marshal(body)             // password is the digest
//	json.Marshal(RevealAll(body))  // password is "secret123"
func RevealAll(data any) any {
	switch v := data.(type) {
	case SensitiveString:
		return v.Reveal()
	case *SensitiveString:
		if v == nil {
			return nil
		}
		return v.Reveal()
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = RevealAll(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = RevealAll(val)
		}
		return result
	default:
		return v
	}
}
