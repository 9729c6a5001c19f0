package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hudl-events/apiserver/types"
)

// WalletVerifier checks an EIP-191 personal_sign signature: the message is
// prefixed and keccak-hashed, the public key is recovered from the
// signature, and the derived address must match the claimed one. Nonce
// freshness inside the message is the orchestrator's responsibility; this
// verifier only judges the cryptography.
type WalletVerifier struct{}

func NewWalletVerifier() *WalletVerifier {
	return &WalletVerifier{}
}

func (v *WalletVerifier) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	walletCreds, ok := creds.(WalletCredentials)
	if !ok {
		return Identity{}, ErrInvalidSignature
	}
	if !common.IsHexAddress(walletCreds.Address) {
		return Identity{}, ErrInvalidSignature
	}

	sig, err := hexutil.Decode(walletCreds.Signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return Identity{}, ErrInvalidSignature
	}

	// Wallets emit the recovery id as 27/28; Ecrecover wants 0/1.
	recoveryID := sig[crypto.RecoveryIDOffset]
	if recoveryID >= 27 {
		recoveryID -= 27
	}
	if recoveryID > 1 {
		return Identity{}, ErrInvalidSignature
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	normalized[crypto.RecoveryIDOffset] = recoveryID

	hash := accounts.TextHash([]byte(walletCreds.Message))
	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return Identity{}, ErrInvalidSignature
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if recovered != common.HexToAddress(walletCreds.Address) {
		return Identity{}, ErrInvalidSignature
	}

	return Identity{
		Provider: types.ProviderWallet,
		Subject:  recovered.Hex(),
	}, nil
}
