// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mmx/internal/models"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// moviesCommand handles catalogue operations
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse, judge and add movies",
		Commands: []*cli.Command{
			{
				Name:   "next",
				Usage:  "Show the next movie waiting for your decision",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MoviesNext,
			},
			{
				Name:   "progress",
				Usage:  "Show how many movies you have left to swipe",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MoviesProgress,
			},
			{
				Name:      "like",
				Usage:     "Mark a movie as one you want to watch",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MoviesDecide(models.Like),
			},
			{
				Name:      "dislike",
				Usage:     "Pass on a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MoviesDecide(models.Dislike),
			},
			{
				Name:    "all",
				Aliases: []string{"ls"},
				Usage:   "List every movie and who has yet to see it",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.MoviesAll,
			},
			{
				Name:      "search",
				Usage:     "Search the movie database (separate several titles with ;)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MoviesSearch,
			},
			{
				Name:      "add",
				Usage:     "Search for a movie and add it to the catalogue",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pick",
						Usage: "Which search result to add (1-based)",
						Value: 1,
					},
				},
				Action: r.MoviesAdd,
			},
			{
				Name:  "import",
				Usage: "Add every title listed in a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File with one title per line (# comments, ; separates titles)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Search only, do not add",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second (default from config)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers (max 5)",
						Value: 2,
					},
				},
				Action: r.MoviesImport,
			},
		},
	}
}

func matchesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "matches",
		Usage: "Show movies everyone liked",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Username to compare (repeatable; default all users)",
			},
			jsonFlag(),
		},
		Action: r.Matches,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the movies you have liked and passed on",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Read the local decision journal instead of the backend",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Only journaled decisions that could not be sent (implies --local)",
			},
			jsonFlag(),
		},
		Action: r.History,
	}
}

func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "users",
		Usage:  "List every account",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Users,
	}
}
