// Command cli is a small terminal client for the task API. The bearer
// token issued by login/register is kept in ~/.taskman/token so task
// commands work across invocations until the token expires.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskman/pkg/taskstore"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "taskman",
	Short: "Manage tasks against a taskman server",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TASKMAN_SERVER", "http://localhost:8080"), "task API base URL")
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, listCmd, addCmd, updateCmd, doneCmd, rmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskman", "token"), nil
}

func newClient() *taskstore.Client {
	c := taskstore.NewClient(serverURL, nil)
	if p, err := tokenPath(); err == nil {
		if b, err := os.ReadFile(p); err == nil {
			c.SetToken(strings.TrimSpace(string(b)))
		}
	}
	return c
}

func saveToken(token string) error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

var registerCmd = &cobra.Command{
	Use:   "register <name> <email> <password>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		client := newClient()
		session := taskstore.NewSession(client)
		if err := session.Register(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		if err := saveToken(client.Token()); err != nil {
			return err
		}
		fmt.Printf("registered as %s\n", session.User().Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in and store the bearer token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		client := newClient()
		session := taskstore.NewSession(client)
		if err := session.Login(ctx, args[0], args[1]); err != nil {
			var rl *taskstore.RateLimitError
			if errors.As(err, &rl) {
				return fmt.Errorf("%s (retry in %d minutes)", rl.Error(), rl.RetryAfter)
			}
			return err
		}
		if err := saveToken(client.Token()); err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", session.User().Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := tokenPath()
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		tasks, err := newClient().ListTasks(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("no tasks")
			return nil
		}
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Printf("[%s] %s  %s\n", mark, t.ID, t.Text)
		}
		return nil
	},
}

var addDescription string

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		t, err := newClient().CreateTask(ctx, taskstore.CreateTaskInput{
			Text:        args[0],
			Description: addDescription,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", t.ID)
		return nil
	},
}

var updateDescription string

var updateCmd = &cobra.Command{
	Use:   "update <id> <text>",
	Short: "Replace a task's text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		t, err := newClient().UpdateTask(ctx, args[0], taskstore.UpdateTaskInput{
			Text:        args[1],
			Description: updateDescription,
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated %s\n", t.ID)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completed flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		t, err := newClient().ToggleTask(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s completed=%v\n", t.ID, t.Completed)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		t, err := newClient().DeleteTask(ctx, args[0])
		if err != nil {
			if taskstore.IsNotFound(err) {
				return fmt.Errorf("task %s not found", args[0])
			}
			return err
		}
		fmt.Printf("deleted %s\n", t.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "optional description")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "optional description")
}
