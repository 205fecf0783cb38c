//go:build !aesprotected_decrypt_only

// Copyright (c) 2019 Oasis Labs Inc. <info@oasislabs.com>
//
// Permission is hereby granted, free of charge, to any person obtaining
// a copy of this software and associated documentation files (the
// "Software"), to deal in the Software without restriction, including
// without limitation the rights to use, copy, modify, merge, publish,
// distribute, sublicense, and/or sell copies of the Software, and to
// permit persons to whom the Software is furnished to do so, subject to
// the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package aesprotected

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type knownAnswerTests struct {
	Name         string
	Key          []byte
	IV           []byte
	MsgData      []byte
	KnownAnswers []*testVector
}

type testVector struct {
	Length int
	ECB    []byte
	CBC    []byte
}

func katInputs() (key, iv, msg []byte) {
	key = make([]byte, KeySize)
	iv = make([]byte, BlockSize)
	msg = make([]byte, 256)

	for i := range key {
		key[i] = byte(255 & (i*191 + 123))
	}
	for i := range iv {
		iv[i] = byte(255 & (i*181 + 123))
	}
	for i := range msg {
		msg[i] = byte(255 & (i*197 + 123))
	}

	return
}

func generateKAT(t *testing.T, fn string) {
	require := require.New(t)

	key, iv, msg := katInputs()
	katOut := &knownAnswerTests{
		Name:    "AES-128",
		Key:     key,
		IV:      iv,
		MsgData: msg,
	}

	var (
		k        Key
		schedule Schedule
		v        IV
	)
	copy(k[:], key)
	copy(v[:], iv)
	ExpandKey(&schedule, &k)
	e := New(Config{}, nil)

	for n := 0; n <= len(msg); n += BlockSize {
		vec := &testVector{
			Length: n,
			ECB:    make([]byte, n),
			CBC:    make([]byte, n),
		}
		for off := 0; off < n; off += BlockSize {
			var state Block
			copy(state[:], msg[off:])
			e.ECBEncrypt(&state, &schedule)
			copy(vec.ECB[off:], state[:])
		}
		err := e.CBCEncryptBlocks(vec.CBC, msg[:n], &v, &schedule)
		require.NoError(err, "CBCEncryptBlocks()")

		katOut.KnownAnswers = append(katOut.KnownAnswers, vec)
	}

	jsonOut, _ := json.Marshal(&katOut)
	err := os.WriteFile(fn, jsonOut, 0o600)
	require.NoError(err, "os.WriteFile()")
}

func mustDecodeHexString(s string) []byte {
	s = strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestVectors(t *testing.T) {
	const testDataFile = "./testdata/AES-128.json"

	doRegenerate := os.Getenv("AESPROTECTED_REGENERATE_KAT") != ""

	for _, tc := range testProfiles {
		t.Run("OfficialVectors_"+tc.name, func(t *testing.T) {
			doTestOfficialVectors(t, tc.cfg)
		})
		t.Run("KnownAnswerTest_"+tc.name, func(t *testing.T) {
			if doRegenerate {
				t.Skip("regenerate mode")
			}
			validateTestVectorJSON(t, testDataFile, tc.cfg)
		})
	}
	if doRegenerate {
		t.Run("KnownAnswerTest-REGENERATE", func(t *testing.T) {
			generateKAT(t, testDataFile)
		})
	}
}

func doTestOfficialVectors(t *testing.T, cfg Config) {
	require := require.New(t)

	e := New(cfg, newTestRand(t))
	for _, tc := range officialTestVectors {
		var (
			key      Key
			schedule Schedule
			state    Block
		)
		copy(key[:], tc.Key)
		e.ExpandKey(&schedule, &key)
		if tc.Schedule != nil {
			require.Equal(tc.Schedule, schedule[:], "%s: ExpandKey()", tc.Name)
		}

		copy(state[:], tc.Plaintext)
		e.ECBEncrypt(&state, &schedule)
		require.Equal(tc.Ciphertext, state[:], "%s: ECBEncrypt()", tc.Name)

		e.ECBDecrypt(&state, &schedule)
		require.Equal(tc.Plaintext, state[:], "%s: ECBDecrypt()", tc.Name)
	}
}

func validateTestVectorJSON(t *testing.T, fn string, cfg Config) {
	require := require.New(t)

	raw, err := os.ReadFile(fn) //nolint:gosec
	require.NoError(err, "Read test vector JSON")

	var kats knownAnswerTests
	err = json.Unmarshal(raw, &kats)
	require.NoError(err, "Parse test vector JSON")

	var (
		key      Key
		schedule Schedule
		iv       IV
	)
	require.Len(kats.Key, KeySize, "Key")
	require.Len(kats.IV, BlockSize, "IV")
	copy(key[:], kats.Key)
	copy(iv[:], kats.IV)

	e := New(cfg, newTestRand(t))
	e.ExpandKey(&schedule, &key)

	msg := kats.MsgData
	for _, v := range kats.KnownAnswers {
		n := v.Length
		m := msg[:n]

		ecb := make([]byte, n)
		for off := 0; off < n; off += BlockSize {
			var state Block
			copy(state[:], m[off:])
			e.ECBEncrypt(&state, &schedule)
			copy(ecb[off:], state[:])

			e.ECBDecrypt(&state, &schedule)
			require.Equal(m[off:off+BlockSize], state[:], "ECBDecrypt(): %d/%d", off, n)
		}
		require.Equal(v.ECB, ecb, "ECBEncrypt(): %d", n)

		cbc := make([]byte, n)
		err = e.CBCEncryptBlocks(cbc, m, &iv, &schedule)
		require.NoError(err, "CBCEncryptBlocks(): %d", n)
		require.Equal(v.CBC, cbc, "CBCEncryptBlocks(): %d", n)

		// In place decryption.
		err = e.CBCDecryptBlocks(cbc, cbc, &iv, &schedule)
		require.NoError(err, "CBCDecryptBlocks(): %d", n)
		require.Equal(m, cbc, "CBCDecryptBlocks(): %d", n)
	}
}

// FIPS-197 Appendix A.1, B and C.1, plus a zero block under a second key.
var officialTestVectors = []struct {
	Name       string
	Key        []byte
	Schedule   []byte
	Plaintext  []byte
	Ciphertext []byte
}{
	{
		Name:       "FIPS-197 C.1",
		Key:        mustDecodeHexString("000102030405060708090a0b0c0d0e0f"),
		Schedule:   mustDecodeHexString("000102030405060708090a0b0c0d0e0f d6aa74fdd2af72fadaa678f1d6ab76fe b692cf0b643dbdf1be9bc5006830b3fe b6ff744ed2c2c9bf6c590cbf0469bf41 47f7f7bc95353e03f96c32bcfd058dfd 3caaa3e8a99f9deb50f3af57adf622aa 5e390f7df7a69296a7553dc10aa31f6b 14f9701ae35fe28c440adf4d4ea9c026 47438735a41c65b9e016baf4aebf7ad2 549932d1f08557681093ed9cbe2c974e 13111d7fe3944a17f307a78b4d2b30c5"),
		Plaintext:  mustDecodeHexString("00112233445566778899aabbccddeeff"),
		Ciphertext: mustDecodeHexString("69c4e0d86a7b0430d8cdb78070b4c55a"),
	},
	{
		Name:       "FIPS-197 Appendix B",
		Key:        mustDecodeHexString("2b7e151628aed2a6abf7158809cf4f3c"),
		Plaintext:  mustDecodeHexString("3243f6a8885a308d313198a2e0370734"),
		Ciphertext: mustDecodeHexString("3925841d02dc09fbdc118597196a0b32"),
	},
	{
		Name:     "Key 00112233445566778899aabbccddeeff",
		Key:      mustDecodeHexString("00112233445566778899aabbccddeeff"),
		Schedule: mustDecodeHexString("00112233445566778899aabbccddeeff c0393478846c520f0cf5f8b4c028164b f67e87c27212d5cd7ee72d79becf3b32 789ca46c0a8e71a174695cd8caa667ea 541923185e9752b92afe0e61e058698b 2ee01ef970774c405a894221bad12baa 3011b20d4066fe4d1aefbc6ca03e97c6 c29906ed82fff8a0981044cc382ed30a 73ff61eaf100994a6910dd86513e0e8c da54053b2b549c71424441f7137a4f7b 36d024461d84b8375fc0f9c04cbab6bb"),
		Plaintext:  make([]byte, BlockSize),
		Ciphertext: mustDecodeHexString("fde4fbae4a09e020eff722969f83832b"),
	},
}
