// SPDX-License-Identifier: GPL-3.0-only

package crypto

// Crypto carries the argon2id cost parameters used for new password digests.
type Crypto struct {
	ArgonTime    uint32
	ArgonMemory  uint32
	ArgonThreads uint8
	ArgonKeyLen  uint32
	ArgonSaltLen uint32
}
