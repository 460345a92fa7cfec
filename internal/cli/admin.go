package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/habit-king/habitking/internal/api"
	"github.com/habit-king/habitking/internal/daemon"
	"github.com/habit-king/habitking/internal/domain"
)

func init() {
	userAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&userZone, "zone", "", "IANA time zone (default: fallback zone)")
	userAddCmd.Flags().BoolVar(&userExempt, "exempt", false, "Exempt from the day lock (test/admin accounts)")
	userCmd.AddCommand(userAddCmd)

	groupAddCmd.Flags().StringVar(&groupName, "name", "", "Group name")
	groupCmd.AddCommand(groupAddCmd, groupJoinCmd)

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(userCmd, groupCmd, tokenCmd)
}

var (
	userName   string
	userZone   string
	userExempt bool
	groupName  string
	tokenTTL   time.Duration
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Create or update an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userZone != "" {
			if _, err := time.LoadLocation(userZone); err != nil {
				return fmt.Errorf("zone %q: %w", userZone, err)
			}
		}
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		name := userName
		if name == "" {
			name = args[0]
		}
		acct := domain.Account{
			ID:          args[0],
			DisplayName: name,
			TimeZone:    userZone,
			Exempt:      userExempt,
			JoinedAt:    time.Now().UTC(),
		}
		if err := d.DB.UpsertAccount(context.Background(), acct); err != nil {
			return err
		}
		fmt.Printf("Saved account %s\n", acct.ID)
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage competition groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add <group-id> <creator-id>",
	Short: "Create a group; the creator joins it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := context.Background()
		if _, err := d.DB.GetAccount(ctx, args[1]); err != nil {
			return err
		}
		name := groupName
		if name == "" {
			name = args[0]
		}
		g := domain.Group{
			ID:         args[0],
			Name:       name,
			InviteCode: strings.ToUpper(uuid.New().String()[:8]),
			CreatorID:  args[1],
			CreatedAt:  time.Now().UTC(),
		}
		if err := d.DB.CreateGroup(ctx, g); err != nil {
			return err
		}
		fmt.Printf("Created group %s (invite code %s)\n", g.ID, g.InviteCode)
		return nil
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id> <user-id>",
	Short: "Add a member to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := context.Background()
		if _, err := d.DB.GetGroup(ctx, args[0]); err != nil {
			return err
		}
		if _, err := d.DB.GetAccount(ctx, args[1]); err != nil {
			return err
		}
		err = d.DB.AddMember(ctx, domain.GroupMember{
			GroupID:  args[0],
			UserID:   args[1],
			Role:     domain.RoleMember,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s joined %s\n", args[1], args[0])
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an API bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.API.JWTSecret == "" {
			return fmt.Errorf("api.jwt_secret is not set (config or HABITKING_JWT_SECRET)")
		}
		tok, err := api.IssueToken(cfg.API.JWTSecret, args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}
