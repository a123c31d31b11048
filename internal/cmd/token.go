package cmd

import (
	"context"
	"fmt"

	"github.com/klauern/block-manager/internal/auth"
	"github.com/klauern/block-manager/internal/constants"
	"github.com/urfave/cli/v3"
)

func userFlag() cli.Flag {
	return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User the credential is issued to", Value: "admin"}
}

func newTokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue API credentials",
		Commands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a signed capability token",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringSliceFlag{Name: "cap", Usage: "Capability to grant", Value: []string{constants.CapabilityManage}},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					svc := auth.NewTokenService([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
					tok, err := svc.Generate(cmd.String("user"), cmd.StringSlice("cap"))
					if err != nil {
						return fmt.Errorf("failed to sign token: %w", err)
					}
					fmt.Fprintln(cmd.Root().Writer, tok)
					return nil
				},
			},
			{
				Name:  "nonce",
				Usage: "Create a settings-save nonce",
				Flags: []cli.Flag{userFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					svc := auth.NewNonceService(cfg.Auth.NonceKey, cfg.Auth.NonceLifetime)
					fmt.Fprintln(cmd.Root().Writer, svc.Create(constants.NonceActionAutoSave, cmd.String("user")))
					return nil
				},
			},
		},
	}
}
