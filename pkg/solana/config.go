package solana

type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// EnvironmentFromName resolves the cluster monikers accepted by the Solana
// CLI. Any other value is treated as an RPC endpoint URL.
func EnvironmentFromName(name string) Environment {
	switch name {
	case "l", "local", "localhost", "localnet":
		return EnvironmentLocal
	case "d", "dev", "devnet":
		return EnvironmentDev
	case "t", "test", "testnet":
		return EnvironmentTest
	case "m", "main", "mainnet", "mainnet-beta":
		return EnvironmentProd
	}

	return Environment(name)
}
