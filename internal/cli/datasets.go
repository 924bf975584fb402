package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/kaggle"
)

func newDatasetsCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"d"},
		Short:   "List, inspect and download datasets",
	}

	cmd.AddCommand(
		newDatasetsListCmd(ro),
		newDatasetsFilesCmd(ro),
		newDatasetsDownloadCmd(ro),
		newDatasetsMetadataCmd(ro),
		newDatasetsStatusCmd(ro),
	)

	return cmd
}

func newDatasetsListCmd(ro *RootOpts) *cobra.Command {
	var (
		opts     kaggle.DatasetListOptions
		mine     bool
		sortBy   string
		fileType string
		license  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			if mine {
				opts.Group = kaggle.DatasetGroupMine
			}
			opts.SortBy = kaggle.DatasetSortBy(sortBy)
			opts.FileType = kaggle.DatasetFileType(fileType)
			opts.License = kaggle.DatasetLicense(license)

			datasets, err := s.ListDatasets(ctx, opts)
			if err != nil {
				return err
			}

			t := table{header: []string{"REF", "TITLE", "SIZE", "LAST UPDATED", "DOWNLOADS", "VOTES", "USABILITY"}}
			for _, d := range datasets {
				t.add(d.Ref, d.Title, humanBytes(d.TotalBytes), date(d.LastUpdated),
					itoa(d.DownloadCount), itoa(d.VoteCount), fmt.Sprintf("%.2f", d.UsabilityRating))
			}

			return render(cmd.OutOrStdout(), s.format, datasets, t)
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Search, "search", "s", "", "Search terms")
	f.StringVar(&opts.User, "user", "", "List datasets owned by this user")
	f.BoolVarP(&mine, "mine", "m", false, "List only your own datasets")
	f.StringVar(&sortBy, "sort-by", "", "Sort by: hottest, votes, updated, active, published")
	f.StringVar(&fileType, "file-type", "", "File type: all, csv, sqlite, json, bigQuery")
	f.StringVar(&license, "license", "", "License: all, cc, gpl, odb, other")
	f.StringSliceVar(&opts.TagIDs, "tags", nil, "Comma-separated tag ids")
	f.IntVarP(&opts.Page, "page", "p", 1, "Page number")
	f.Int64Var(&opts.MinSize, "min-size", 0, "Minimum size in bytes")
	f.Int64Var(&opts.MaxSize, "max-size", 0, "Maximum size in bytes")

	return cmd
}

func newDatasetsFilesCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "files OWNER/DATASET",
		Short: "List the files in a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			res, err := s.ListDatasetFiles(ctx, slug)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), s.format, res.DatasetFiles, filesTable(res.DatasetFiles))
		}),
	}
}

func newDatasetsDownloadCmd(ro *RootOpts) *cobra.Command {
	var (
		dl   downloadFlags
		file string
	)

	cmd := &cobra.Command{
		Use:   "download OWNER/DATASET",
		Short: "Download a dataset or one of its files",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			opts := dl.options(cmd, ro)

			var res *kaggle.DownloadResult
			if file != "" {
				res, err = s.DownloadDatasetFile(ctx, slug, file, opts)
			} else {
				res, err = s.DownloadDataset(ctx, slug, opts)
			}
			if err != nil {
				return err
			}

			return renderDownload(cmd, s, res)
		}),
	}

	dl.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Download only this file")
	cmd.Flags().IntVar(&dl.version, "version", 0, "Dataset version (0 is the latest)")

	return cmd
}

func newDatasetsMetadataCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata OWNER/DATASET",
		Short: "Show a dataset's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			md, err := s.DatasetMetadata(ctx, slug)
			if err != nil {
				return err
			}

			t := table{header: []string{"FIELD", "VALUE"}}
			t.add("slug", md.DatasetSlug)
			t.add("title", md.Title)
			t.add("subtitle", md.Subtitle)
			t.add("private", fmt.Sprint(md.IsPrivate))
			t.add("usability", fmt.Sprintf("%.2f", md.UsabilityRating))
			t.add("views", itoa(md.TotalViews))
			t.add("votes", itoa(md.TotalVotes))
			t.add("downloads", itoa(md.TotalDownloads))
			for _, l := range md.Licenses {
				t.add("license", l.Name)
			}
			for _, k := range md.Keywords {
				t.add("keyword", k)
			}

			return render(cmd.OutOrStdout(), s.format, md, t)
		}),
	}
}

func newDatasetsStatusCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status OWNER/DATASET",
		Short: "Show a dataset's processing status",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			slug, err := kaggle.ParseSlug(args[0])
			if err != nil {
				return err
			}

			status, err := s.DatasetStatus(ctx, slug)
			if err != nil {
				return err
			}

			t := table{header: []string{"DATASET", "STATUS"}}
			t.add(slug.String(), string(status))

			return render(cmd.OutOrStdout(), s.format, map[string]string{"dataset": slug.String(), "status": string(status)}, t)
		}),
	}
}

func filesTable(files []kaggle.File) table {
	t := table{header: []string{"NAME", "SIZE", "CREATED"}}
	for _, f := range files {
		t.add(f.Name, humanBytes(f.TotalBytes), date(f.CreationDate))
	}

	return t
}

// downloadFlags are shared by every download command.
type downloadFlags struct {
	dir           string
	unzip         bool
	keepExisting  bool
	removeArchive bool
	force         bool
	version       int
}

func (d *downloadFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&d.dir, "path", "p", ".", "Directory to download into")
	f.BoolVar(&d.unzip, "unzip", false, "Extract archives after downloading")
	f.BoolVar(&d.keepExisting, "keep-existing", false, "Do not overwrite files when extracting")
	f.BoolVar(&d.removeArchive, "remove-archive", false, "Delete the archive after extracting")
	f.BoolVar(&d.force, "force", false, "Download even if the file already exists")
}

func (d *downloadFlags) options(cmd *cobra.Command, ro *RootOpts) kaggle.DownloadOptions {
	return kaggle.DownloadOptions{
		Dir:           d.dir,
		Version:       d.version,
		Extract:       d.unzip,
		KeepExisting:  d.keepExisting,
		RemoveArchive: d.removeArchive,
		SkipExisting:  !d.force,
		Wrap:          progressBar(cmd.ErrOrStderr(), ro.Quiet),
	}
}

func renderDownload(cmd *cobra.Command, s *session, res *kaggle.DownloadResult) error {
	t := table{header: []string{"PATH", "EXTRACTED", "ARCHIVE REMOVED"}}
	t.add(res.Path, itoa(int64(len(res.Extracted))), fmt.Sprint(res.Removed))

	return render(cmd.OutOrStdout(), s.format, res, t)
}
