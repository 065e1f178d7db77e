package persistence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/jukebox/internal/model"
)

type SealerSuite struct {
	suite.Suite
	sealer *SecretboxSealer
}

func TestSealerSuite(t *testing.T) {
	suite.Run(t, new(SealerSuite))
}

func (s *SealerSuite) SetupTest() {
	s.sealer = NewSecretboxSealer("passphrase")
}

func (s *SealerSuite) TestSealThenOpen() {
	sealed, err := s.sealer.Seal([]byte("payload"))
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(sealed, []byte("JBX1")))

	plain, err := s.sealer.Open(sealed)
	s.Require().NoError(err)
	s.Equal([]byte("payload"), plain)
}

func (s *SealerSuite) TestNonceDiffersPerSeal() {
	a, _ := s.sealer.Seal([]byte("payload"))
	b, _ := s.sealer.Seal([]byte("payload"))
	s.NotEqual(a, b)
}

func (s *SealerSuite) TestSaltDiffersPerSeal() {
	a, err := s.sealer.Seal([]byte("payload"))
	s.Require().NoError(err)
	b, err := s.sealer.Seal([]byte("payload"))
	s.Require().NoError(err)

	s.Len(saltOf(a), saltSize)
	s.NotEqual(saltOf(a), saltOf(b))

	// Both still open with the one passphrase
	for _, sealed := range [][]byte{a, b} {
		plain, err := s.sealer.Open(sealed)
		s.Require().NoError(err)
		s.Equal([]byte("payload"), plain)
	}
}

func (s *SealerSuite) TestSaltIsPartOfTheKey() {
	sealed, err := s.sealer.Seal([]byte("payload"))
	s.Require().NoError(err)
	sealed[len(sealedMagic)] ^= 0xff

	_, err = s.sealer.Open(sealed)
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *SealerSuite) TestWrongPassphraseRejected() {
	sealed, err := s.sealer.Seal([]byte("payload"))
	s.Require().NoError(err)

	_, err = NewSecretboxSealer("other").Open(sealed)
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *SealerSuite) TestTamperedBlobRejected() {
	sealed, _ := s.sealer.Seal([]byte("payload"))
	sealed[len(sealed)-1] ^= 0xff

	_, err := s.sealer.Open(sealed)
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *SealerSuite) TestUnsealedBlobRejected() {
	_, err := s.sealer.Open([]byte(`{"schema":"jukebox.day/v1"}`))
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *SealerSuite) TestTruncatedBlobRejected() {
	_, err := s.sealer.Open([]byte("JBX1short"))
	s.ErrorIs(err, model.ErrCorruptSnapshot)
}

func (s *SealerSuite) TestPlainSealerPassesThrough() {
	var p PlainSealer
	sealed, err := p.Seal([]byte("x"))
	s.Require().NoError(err)
	plain, err := p.Open(sealed)
	s.Require().NoError(err)
	s.Equal([]byte("x"), plain)
}

// saltOf returns the salt of a sealed snapshot
func saltOf(sealed []byte) []byte {
	if len(sealed) < len(sealedMagic)+saltSize {
		return nil
	}
	return sealed[len(sealedMagic) : len(sealedMagic)+saltSize]
}
