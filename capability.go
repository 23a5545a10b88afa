package marrow

// HashAlgo names a supported hashing algorithm for Secret fields.
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA512 HashAlgo = "sha512"
)

// validHashAlgos contains all valid hash algorithms for schema validation.
var validHashAlgos = map[HashAlgo]bool{
	HashArgon2: true,
	HashBcrypt: true,
	HashSHA256: true,
	HashSHA512: true,
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}
