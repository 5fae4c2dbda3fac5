package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marks-app/marks/internal/client"
	"github.com/marks-app/marks/internal/logger"
)

// newWatchCmd follows a bookmark list live from the terminal: the list is
// reprinted whenever any session, anywhere, changes it.
func newWatchCmd() *cobra.Command {
	var server, token string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch your bookmarks live",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" || token == "" {
				return fmt.Errorf("--server and --token are required")
			}

			log, err := logger.New("warn", true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			remote := client.NewRemote(server, token)
			app := client.NewApp(remote, remote, remote, log)
			remote.SetOnUnauthorized(app.Sessions.Invalidate)

			app.View.SetOnChange(func(bookmarks []client.Bookmark) {
				fmt.Print("\033[H\033[2J") // clear screen
				if len(bookmarks) == 0 {
					fmt.Println("No bookmarks yet.")
					return
				}
				for _, b := range bookmarks {
					fmt.Printf("%s  %s\n    %s\n", b.CreatedAt.Local().Format("2006-01-02 15:04"), b.Title, b.URL)
				}
			})

			app.Sessions.Subscribe(func(s *client.Session) {
				if s == nil {
					fmt.Println("signed out")
					cancel()
				} else {
					fmt.Printf("watching as %s\n", s.Email)
				}
			})

			app.Run(ctx)
			defer app.Close()

			if app.Sessions.State() != client.StateAuthenticated {
				return fmt.Errorf("token rejected by %s", server)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sig:
			case <-ctx.Done():
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "marks server base URL")
	cmd.Flags().StringVar(&token, "token", "", "API token (see `marks token`)")
	return cmd
}
