// Command powsolve brute-forces a proof of work challenge from its raw fields. It is
// meant for integration testing and for clients that cannot run the widget.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/vouchpost/vouchpost/pkg/pow"
)

func main() {
	app := &cli.App{
		Name:  "powsolve",
		Usage: "Solve a proof of work challenge",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "nonce",
				Usage:    "The challenge nonce",
				Required: true,
			},
			&cli.UintFlag{
				Name:     "difficulty",
				Usage:    "The challenge difficulty",
				Required: true,
			},
			&cli.Int64Flag{
				Name:     "timestamp",
				Usage:    "The challenge timestamp",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			difficulty := c.Uint("difficulty")
			if difficulty == 0 || difficulty > pow.MaxDifficulty {
				return fmt.Errorf("the difficulty must be between 1 and %v", pow.MaxDifficulty)
			}

			challenge := pow.Challenge{
				Nonce:      c.Uint64("nonce"),
				Difficulty: uint16(difficulty),
				Timestamp:  c.Int64("timestamp"),
			}

			solution := challenge.Solve()
			fmt.Printf("Solution: %v\n", solution)
			fmt.Printf("Digest:   %v\n", challenge.HashSolution(solution))

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
