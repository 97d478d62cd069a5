package cmd

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/store"

	_ "github.com/machovotrish/luma/pkg/adapters"
)

var doctorTimeout int

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the agent, credential, and data directory",
	Long:  `Doctor checks whether the configured agent can be driven, whether a credential is stored, and whether the data directory is writable.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().IntVar(&doctorTimeout, "timeout", 10, "Health check timeout in seconds")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	fmt.Println("Luma Doctor")
	fmt.Println()

	// Data directory
	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		fmt.Printf("  ❌ data directory: %v\n", err)
		return fmt.Errorf("data directory check failed")
	}
	fmt.Printf("  ✅ data directory: %s\n", st.Dir())

	// Credential
	if key := st.LoadCredential(); key != "" {
		fmt.Printf("  ✅ credential: %s configured\n", store.CredentialKey)
	} else {
		fmt.Printf("  ⚠️  credential: %s not set (required for hosted agents)\n", store.CredentialKey)
	}

	// Adapter
	agentCfg := cfg.Agent
	if agentCfg.APIKey == "" {
		agentCfg.APIKey = st.LoadCredential()
	}

	a, err := agent.Create(agentCfg, io.Discard)
	if err != nil {
		fmt.Printf("  ❌ agent: %v\n", err)
		return fmt.Errorf("agent check failed")
	}

	if !a.IsAvailable() {
		fmt.Printf("  ❌ agent %q (type %s): not available\n", a.Name(), a.Type())
		if agentCfg.Type == "browser" {
			if agentCfg.Command == "" {
				agentCfg.Command = "windows-use"
			}
			if _, lookErr := exec.LookPath(agentCfg.Command); lookErr != nil {
				fmt.Printf("     %q is not on the PATH\n", agentCfg.Command)
			}
		}
		return fmt.Errorf("agent unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(doctorTimeout)*time.Second)
	defer cancel()

	if err := a.HealthCheck(ctx); err != nil {
		fmt.Printf("  ❌ agent %q (type %s): health check failed: %v\n", a.Name(), a.Type(), err)
		return fmt.Errorf("health check failed")
	}
	fmt.Printf("  ✅ agent %q (type %s): healthy\n", a.Name(), a.Type())

	fmt.Println()
	fmt.Println("Ready. Start the chat with 'luma run'.")
	return nil
}
