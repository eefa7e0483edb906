// Package memory provides an in-process ledger that implements solana.Client
// and executes the system and favorites programs, so the favorites client can
// be exercised without a cluster.
package memory

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/solana/system"
)

const (
	// FeePerSignature is the flat fee charged to the fee payer for each
	// signature on a transaction.
	FeePerSignature = 5000

	maxRecentBlockhashes = 150
)

var errDeveloperInduced = errors.New("in memory ledger: developer induced error")

// Ledger is an in memory cluster. Transactions are executed atomically and
// are either fully applied or rejected the way a node rejects a failed
// preflight.
type Ledger struct {
	log *logrus.Entry

	mu           sync.Mutex
	slot         uint64
	blockhashes  []solana.Blockhash
	accounts     map[string]*solana.AccountInfo
	statuses     map[solana.Signature]*solana.SignatureStatus
	airdropError error
}

// NewLedger returns a ledger with the favorites program deployed.
func NewLedger() *Ledger {
	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "favorites/memory"),
		accounts: make(map[string]*solana.AccountInfo),
		statuses: make(map[solana.Signature]*solana.SignatureStatus),
	}

	l.accounts[accountKey(favorites.PROGRAM_ID)] = &solana.AccountInfo{
		Owner:      bpfLoaderUpgradeable,
		Lamports:   system.MinimumBalanceForRentExemption(36),
		Data:       make([]byte, 36),
		Executable: true,
	}
	l.advance()

	return l
}

var bpfLoaderUpgradeable = mustBase58Decode("BPFLoaderUpgradeab1e11111111111111111111111")

// InduceAirdropErrors makes subsequent airdrop requests fail.
func (l *Ledger) InduceAirdropErrors() {
	l.mu.Lock()
	l.airdropError = errDeveloperInduced
	l.mu.Unlock()
}

// StopInducingErrors restores normal airdrop behaviour.
func (l *Ledger) StopInducingErrors() {
	l.mu.Lock()
	l.airdropError = nil
	l.mu.Unlock()
}

// GetAccountInfo implements solana.Client.GetAccountInfo
func (l *Ledger) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts[accountKey(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return *cloneAccount(info), nil
}

// GetBalance implements solana.Client.GetBalance
func (l *Ledger) GetBalance(account ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts[accountKey(account)]
	if !ok {
		return 0, nil
	}
	return info.Lamports, nil
}

// GetLatestBlockhash implements solana.Client.GetLatestBlockhash
func (l *Ledger) GetLatestBlockhash() (solana.Blockhash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.blockhashes[len(l.blockhashes)-1], nil
}

// GetMinimumBalanceForRentExemption implements solana.Client.GetMinimumBalanceForRentExemption
func (l *Ledger) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return system.MinimumBalanceForRentExemption(size), nil
}

// GetSignatureStatus implements solana.Client.GetSignatureStatus
func (l *Ledger) GetSignatureStatus(sig solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	status, ok := l.statuses[sig]
	if !ok {
		return nil, solana.ErrSignatureNotFound
	}

	cloned := *status
	return &cloned, nil
}

// GetSignatureStatuses implements solana.Client.GetSignatureStatuses
func (l *Ledger) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		if status, ok := l.statuses[sig]; ok {
			cloned := *status
			res[i] = &cloned
		}
	}
	return res, nil
}

// GetSlot implements solana.Client.GetSlot
func (l *Ledger) GetSlot(_ solana.Commitment) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.slot, nil
}

// RequestAirdrop implements solana.Client.RequestAirdrop
func (l *Ledger) RequestAirdrop(account ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.airdropError != nil {
		return solana.Signature{}, l.airdropError
	}
	if lamports == 0 {
		return solana.Signature{}, errors.New("airdrop amount must be positive")
	}
	if len(account) != ed25519.PublicKeySize {
		return solana.Signature{}, errors.New("invalid account")
	}

	info, ok := l.accounts[accountKey(account)]
	if !ok {
		info = &solana.AccountInfo{Owner: system.SystemAccount}
		l.accounts[accountKey(account)] = info
	}
	info.Lamports += lamports

	var sig solana.Signature
	if _, err := rand.Read(sig[:]); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error generating signature")
	}
	l.recordSuccess(sig)

	l.log.WithFields(logrus.Fields{
		"account":  base58.Encode(account),
		"lamports": lamports,
	}).Debug("airdrop processed")

	return sig, nil
}

// SubmitTransaction implements solana.Client.SubmitTransaction
func (l *Ledger) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	if len(txn.Signatures) == 0 {
		return solana.Signature{}, rejected(solana.TransactionErrorSanitizeFailure, "Transaction has no signatures")
	}
	sig := txn.Signatures[0]

	if err := txn.Verify(); err != nil {
		return sig, rejected(solana.TransactionErrorSignatureFailure, "Transaction signature verification failure")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.statuses[sig]; ok {
		return sig, rejected(solana.TransactionErrorDuplicateSignature, "Transaction simulation failed: This transaction has already been processed")
	}

	if !l.isRecentBlockhash(txn.Message.RecentBlockhash) {
		return sig, rejected(solana.TransactionErrorBlockhashNotFound, "Transaction simulation failed: Blockhash not found")
	}

	exec := newExecution(l, txn.Message)
	if err := exec.chargeFee(uint64(len(txn.Signatures)) * FeePerSignature); err != nil {
		return sig, err
	}

	for i, compiled := range txn.Message.Instructions {
		if err := exec.run(i, solana.DecompileInstruction(txn.Message, compiled)); err != nil {
			l.log.WithFields(logrus.Fields{
				"signature": sig.String(),
				"index":     i,
			}).WithError(err).Debug("transaction rejected")
			return sig, err
		}
	}

	exec.commit()
	l.recordSuccess(sig)

	return sig, nil
}

// must be called with mu held
func (l *Ledger) recordSuccess(sig solana.Signature) {
	l.statuses[sig] = &solana.SignatureStatus{
		Slot:               l.slot,
		ConfirmationStatus: "finalized",
	}
	l.advance()
}

// must be called with mu held
func (l *Ledger) advance() {
	l.slot++

	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], l.slot)
	l.blockhashes = append(l.blockhashes, solana.Blockhash(sha256.Sum256(seed[:])))

	if len(l.blockhashes) > maxRecentBlockhashes {
		l.blockhashes = l.blockhashes[len(l.blockhashes)-maxRecentBlockhashes:]
	}
}

// must be called with mu held
func (l *Ledger) isRecentBlockhash(bh solana.Blockhash) bool {
	for _, recent := range l.blockhashes {
		if recent == bh {
			return true
		}
	}
	return false
}

func rejected(key solana.TransactionErrorKey, msg string) error {
	return solana.NewTransactionError(key).WithMessage(msg, nil)
}

func accountKey(account ed25519.PublicKey) string {
	return base58.Encode(account)
}

func cloneAccount(info *solana.AccountInfo) *solana.AccountInfo {
	cloned := &solana.AccountInfo{
		Lamports:   info.Lamports,
		Executable: info.Executable,
		Owner:      append(ed25519.PublicKey(nil), info.Owner...),
	}
	if info.Data != nil {
		cloned.Data = append([]byte(nil), info.Data...)
	}
	return cloned
}

func mustBase58Decode(value string) ed25519.PublicKey {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
