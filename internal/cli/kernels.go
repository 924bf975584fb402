package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/kaggle"
)

func newKernelsCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kernels",
		Aliases: []string{"k"},
		Short:   "List, pull and inspect kernels",
	}

	cmd.AddCommand(
		newKernelsListCmd(ro),
		newKernelsPullCmd(ro),
		newKernelsStatusCmd(ro),
		newKernelsOutputCmd(ro),
	)

	return cmd
}

func newKernelsListCmd(ro *RootOpts) *cobra.Command {
	var (
		opts       kaggle.KernelListOptions
		mine       bool
		group      string
		language   string
		kernelType string
		outputType string
		sortBy     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List kernels",
		Args:  cobra.NoArgs,
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			opts.Group = kaggle.KernelGroup(group)
			if mine {
				opts.Group = kaggle.KernelGroupProfile
				opts.User = s.Username()
			}
			opts.Language = kaggle.Language(language)
			opts.KernelType = kaggle.KernelType(kernelType)
			opts.OutputType = kaggle.OutputType(outputType)
			opts.SortBy = kaggle.KernelSortBy(sortBy)

			kernels, err := s.ListKernels(ctx, opts)
			if err != nil {
				return err
			}

			t := table{header: []string{"REF", "TITLE", "AUTHOR", "LAST RUN", "VOTES"}}
			for _, k := range kernels {
				t.add(k.Ref, k.Title, k.Author, date(k.LastRunTime), itoa(k.TotalVotes))
			}

			return render(cmd.OutOrStdout(), s.format, kernels, t)
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Search, "search", "s", "", "Search terms")
	f.BoolVarP(&mine, "mine", "m", false, "List only your own kernels")
	f.StringVar(&opts.User, "user", "", "List kernels by this user")
	f.StringVar(&group, "group", "", "Group: everyone, profile, upvoted")
	f.StringVar(&language, "language", "", "Language: all, python, r, sqlite, julia")
	f.StringVar(&kernelType, "kernel-type", "", "Kernel type: all, script, notebook")
	f.StringVar(&outputType, "output-type", "", "Output type: all, visualization, data")
	f.StringVar(&sortBy, "sort-by", "", "Sort by: hotness, commentCount, dateCreated, dateRun, relevance, scoreAscending, scoreDescending, viewCount, voteCount")
	f.StringVar(&opts.Dataset, "dataset", "", "Only kernels using this dataset (owner/name)")
	f.StringVar(&opts.Competition, "competition", "", "Only kernels for this competition")
	f.StringVar(&opts.ParentKernel, "parent", "", "Only forks of this kernel (owner/name)")
	f.IntVarP(&opts.Page, "page", "p", 1, "Page number")
	f.IntVar(&opts.PageSize, "page-size", 20, "Results per page (max 100)")

	return cmd
}

func newKernelsPullCmd(ro *RootOpts) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "pull OWNER/KERNEL",
		Short: "Save a kernel's source code",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			path, err := s.SaveKernel(ctx, slug, dir)
			if err != nil {
				return err
			}

			t := table{header: []string{"PATH"}}
			t.add(path)

			return render(cmd.OutOrStdout(), s.format, map[string]string{"path": path}, t)
		}),
	}

	cmd.Flags().StringVarP(&dir, "path", "p", ".", "Directory to save the source into")

	return cmd
}

func newKernelsStatusCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status OWNER/KERNEL",
		Short: "Show the status of a kernel's latest run",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			status, err := s.KernelStatus(ctx, slug)
			if err != nil {
				return err
			}

			t := table{header: []string{"KERNEL", "STATUS", "FAILURE"}}
			t.add(slug.String(), status.Status, status.FailureMessage)

			return render(cmd.OutOrStdout(), s.format, status, t)
		}),
	}
}

func newKernelsOutputCmd(ro *RootOpts) *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "output OWNER/KERNEL",
		Short: "Download the output files of a kernel's latest run",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			paths, err := s.DownloadKernelOutput(ctx, slug, kaggle.DownloadOptions{
				Dir:          dir,
				SkipExisting: !force,
				Wrap:         progressBar(cmd.ErrOrStderr(), ro.Quiet),
			})
			if err != nil {
				return err
			}

			t := table{header: []string{"PATH"}}
			for _, p := range paths {
				t.add(p)
			}

			return render(cmd.OutOrStdout(), s.format, paths, t)
		}),
	}

	cmd.Flags().StringVarP(&dir, "path", "p", ".", "Directory to download into")
	cmd.Flags().BoolVar(&force, "force", false, "Download even if a file already exists")

	return cmd
}
