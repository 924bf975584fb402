package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/kaggle"
)

func newCompetitionsCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "competitions",
		Aliases: []string{"c"},
		Short:   "List competitions, download their data and submit",
	}

	cmd.AddCommand(
		newCompetitionsListCmd(ro),
		newCompetitionsFilesCmd(ro),
		newCompetitionsDownloadCmd(ro),
		newCompetitionsSubmitCmd(ro),
		newCompetitionsSubmissionsCmd(ro),
		newCompetitionsLeaderboardCmd(ro),
	)

	return cmd
}

func newCompetitionsListCmd(ro *RootOpts) *cobra.Command {
	var (
		opts     kaggle.CompetitionListOptions
		group    string
		category string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List competitions",
		Args:  cobra.NoArgs,
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			opts.Group = kaggle.CompetitionGroup(group)
			opts.Category = kaggle.CompetitionCategory(category)
			opts.SortBy = kaggle.CompetitionSortBy(sortBy)

			comps, err := s.ListCompetitions(ctx, opts)
			if err != nil {
				return err
			}

			t := table{header: []string{"REF", "DEADLINE", "CATEGORY", "REWARD", "TEAMS", "ENTERED"}}
			for _, c := range comps {
				entered := ""
				if c.UserHasEntered {
					entered = "yes"
				}
				t.add(c.Ref, date(c.Deadline), c.Category, c.Reward, itoa(c.TeamCount), entered)
			}

			return render(cmd.OutOrStdout(), s.format, comps, t)
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Search, "search", "s", "", "Search terms")
	f.StringVar(&group, "group", "", "Group: general, entered, inClass")
	f.StringVar(&category, "category", "", "Category: all, featured, research, recruitment, gettingStarted, masters, playground")
	f.StringVar(&sortBy, "sort-by", "", "Sort by: grouped, prize, earliestDeadline, latestDeadline, numberOfTeams, recentlyCreated")
	f.IntVarP(&opts.Page, "page", "p", 1, "Page number")

	return cmd
}

func newCompetitionsFilesCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "files COMPETITION",
		Short: "List a competition's data files",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			files, err := s.ListCompetitionFiles(ctx, args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), s.format, files, filesTable(files))
		}),
	}
}

func newCompetitionsDownloadCmd(ro *RootOpts) *cobra.Command {
	var (
		dl   downloadFlags
		file string
	)

	cmd := &cobra.Command{
		Use:   "download COMPETITION",
		Short: "Download a competition's data, or one file of it",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			opts := dl.options(cmd, ro)

			var (
				res *kaggle.DownloadResult
				err error
			)
			if file != "" {
				res, err = s.DownloadCompetitionFile(ctx, args[0], file, opts)
			} else {
				res, err = s.DownloadCompetitionFiles(ctx, args[0], opts)
			}
			if err != nil {
				return err
			}

			return renderDownload(cmd, s, res)
		}),
	}

	dl.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Download only this file")

	return cmd
}

func newCompetitionsSubmitCmd(ro *RootOpts) *cobra.Command {
	var (
		file    string
		message string
	)

	cmd := &cobra.Command{
		Use:   "submit COMPETITION",
		Short: "Submit a file to a competition",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			res, err := s.Submit(ctx, args[0], file, message)
			if err != nil {
				return err
			}

			t := table{header: []string{"MESSAGE", "REF"}}
			t.add(res.Message, itoa(res.Ref))

			return render(cmd.OutOrStdout(), s.format, res, t)
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File to submit")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Submission description")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newCompetitionsSubmissionsCmd(ro *RootOpts) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "submissions COMPETITION",
		Short: "List your submissions to a competition",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			subs, err := s.ListSubmissions(ctx, args[0], page)
			if err != nil {
				return err
			}

			t := table{header: []string{"FILE", "DATE", "DESCRIPTION", "STATUS", "PUBLIC", "PRIVATE"}}
			for _, sub := range subs {
				t.add(sub.FileName, date(sub.Date), sub.Description, sub.Status, sub.PublicScore, sub.PrivateScore)
			}

			return render(cmd.OutOrStdout(), s.format, subs, t)
		}),
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")

	return cmd
}

func newCompetitionsLeaderboardCmd(ro *RootOpts) *cobra.Command {
	var (
		dl       downloadFlags
		download bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard COMPETITION",
		Short: "Show or download a competition's public leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if download {
				res, err := s.DownloadLeaderboard(ctx, args[0], dl.options(cmd, ro))
				if err != nil {
					return err
				}
				return renderDownload(cmd, s, res)
			}

			entries, err := s.ViewLeaderboard(ctx, args[0])
			if err != nil {
				return err
			}

			t := table{header: []string{"TEAM ID", "TEAM", "SUBMITTED", "SCORE"}}
			for _, e := range entries {
				t.add(itoa(e.TeamID), e.TeamName, date(e.SubmissionDate), e.Score)
			}

			return render(cmd.OutOrStdout(), s.format, entries, t)
		}),
	}

	dl.register(cmd)
	cmd.Flags().BoolVarP(&download, "download", "d", false, "Download the full leaderboard instead of showing the top")

	return cmd
}
