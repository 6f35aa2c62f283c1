package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/athena-chat/athena/internal/config"
	"github.com/athena-chat/athena/internal/store"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the conversation and persona files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			st := store.NewFileStore(cfg.ConversationsFile, cfg.PersonasFile)

			convs, err := st.LoadConversations()
			if err != nil {
				return errors.Wrap(err, "conversations")
			}
			personas, err := st.LoadPersonas()
			if err != nil {
				return errors.Wrap(err, "personas")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d conversations\n", st.ConversationsPath(), convs.Len())
			fmt.Fprintf(out, "%s: %d personas\n", st.PersonasPath(), len(personas))
			return nil
		},
	}
}
