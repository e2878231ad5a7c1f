package internal

import "math/rand/v2"

const alphanumeric = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// GenerateRandomString generates a random string composed of alphanumeric
// characters of length size.
func GenerateRandomString(size int) string {
	return GenerateRandomStringFromAlphabet(size, alphanumeric)
}

// GenerateRandomStringFromAlphabet generates a random string of a given size
// using characters from the given alphabet.
func GenerateRandomStringFromAlphabet(size int, alphabet string) string {
	buf := make([]byte, size)
	for i := range size {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
