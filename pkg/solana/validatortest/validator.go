// Package validatortest runs a local Solana test validator in Docker with the
// favorites program preloaded.
package validatortest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mr-tron/base58"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	"github.com/code-payments/favorites-client/pkg/retry"
	"github.com/code-payments/favorites-client/pkg/retry/backoff"
	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/testutil"
)

const (
	containerName     = "solanalabs/solana"
	containerVersion  = "v1.18.26"
	containerAutoKill = 300 * time.Second

	rpcPort       = 8899
	programMount  = "/program"
	programBinary = "favorites.so"
)

// StartTestValidator starts a solana-test-validator container with the
// compiled program at programPath loaded at the favorites program id, and
// returns a client for its RPC endpoint.
func StartTestValidator(pool *dockertest.Pool, programPath string) (client solana.Client, endpoint string, closeFunc func(), err error) {
	closeFunc = func() {}

	programPath, err = filepath.Abs(programPath)
	if err != nil {
		return nil, "", closeFunc, errors.Wrap(err, "invalid program path")
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Entrypoint: []string{"solana-test-validator"},
		Cmd: []string{
			"--reset",
			"--quiet",
			"--bpf-program",
			base58.Encode(favorites.PROGRAM_ID),
			fmt.Sprintf("%s/%s", programMount, programBinary),
		},
		Mounts:       []string{fmt.Sprintf("%s:%s/%s", programPath, programMount, programBinary)},
		ExposedPorts: []string{fmt.Sprintf("%d/tcp", rpcPort)},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, "", closeFunc, errors.Wrapf(err, "failed to start resource")
	}

	closeFunc = func() {
		_ = pool.Purge(resource)
	}

	// Expire() never returns an error
	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	endpoint = fmt.Sprintf("http://%s", resource.GetHostPort(fmt.Sprintf("%d/tcp", rpcPort)))
	client = solana.New(endpoint)

	_, err = retry.Retry(
		func() error {
			_, err := client.GetSlot(solana.CommitmentConfirmed)
			return err
		},
		retry.Limit(60),
		retry.Backoff(backoff.Constant(time.Second), time.Second),
	)
	if err != nil {
		closeFunc()
		return nil, "", func() {}, errors.Wrap(err, "timed out waiting for validator to become available")
	}

	err = testutil.WaitFor(30*time.Second, 500*time.Millisecond, func() bool {
		info, err := client.GetAccountInfo(favorites.PROGRAM_ID, solana.CommitmentConfirmed)
		return err == nil && info.Executable
	})
	if err != nil {
		closeFunc()
		return nil, "", func() {}, errors.Wrap(err, "favorites program was not deployed")
	}

	return client, endpoint, closeFunc, nil
}
