// Small wrapper around sha3 package to
// canonicalize how signatures are hashed
package keccak

import "golang.org/x/crypto/sha3"

func Sum(d []byte) []byte {
	k := sha3.NewLegacyKeccak256()
	k.Write(d)
	return k.Sum(nil)
}

// full hash. topic of an event signature
func Sum32(d []byte) [32]byte {
	return *(*[32]byte)(Sum(d))
}

// first 4 bytes. selector of a function signature
func Sum4(d []byte) [4]byte {
	return [4]byte(Sum(d)[:4])
}
