package kaggle

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Time is a timestamp as the API reports it. It accepts RFC 3339 and
// zone-less "2006-01-02T15:04:05" forms, the latter read as UTC. null and
// empty strings decode to the zero Time.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}

	return fmt.Errorf("time: unrecognised format %q", raw)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Competition is a Kaggle competition as listed by the API.
type Competition struct {
	ID                       int64   `json:"id"`
	Ref                      string  `json:"ref" validate:"required"`
	Title                    string  `json:"title"`
	Description              string  `json:"description"`
	URL                      string  `json:"url"`
	Tags                     []Tag   `json:"tags"`
	Deadline                 Time    `json:"deadline"`
	Category                 string  `json:"category"`
	Reward                   string  `json:"reward"`
	OrganizationName         *string `json:"organizationName"`
	OrganizationRef          *string `json:"organizationRef"`
	KernelCount              int64   `json:"kernelCount"`
	TeamCount                int64   `json:"teamCount"`
	UserHasEntered           bool    `json:"userHasEntered"`
	UserRank                 *int64  `json:"userRank"`
	MergerDeadline           Time    `json:"mergerDeadline"`
	NewEntrantDeadline       Time    `json:"newEntrantDeadline"`
	EnabledDate              Time    `json:"enabledDate"`
	MaxDailySubmissions      int64   `json:"maxDailySubmissions"`
	MaxTeamSize              *int64  `json:"maxTeamSize"`
	EvaluationMetric         string  `json:"evaluationMetric"`
	AwardsPoints             bool    `json:"awardsPoints"`
	IsKernelsSubmissionsOnly bool    `json:"isKernelsSubmissionsOnly"`
	SubmissionsDisabled      bool    `json:"submissionsDisabled"`
}

// Submission is one of the caller's own submissions to a competition.
type Submission struct {
	Ref              int64  `json:"ref" validate:"required"`
	FileName         string `json:"fileName"`
	Date             Time   `json:"date"`
	Description      string `json:"description"`
	ErrorDescription string `json:"errorDescription"`
	Status           string `json:"status"`
	PublicScore      string `json:"publicScore"`
	PrivateScore     string `json:"privateScore"`
	SubmittedBy      string `json:"submittedBy"`
	SubmittedByRef   string `json:"submittedByRef"`
	TeamName         string `json:"teamName"`
	TotalBytes       int64  `json:"totalBytes"`
	URL              string `json:"url"`
}

// LeaderboardEntry is a team's standing on a public leaderboard.
type LeaderboardEntry struct {
	TeamID         int64  `json:"teamId" validate:"required"`
	TeamName       string `json:"teamName"`
	SubmissionDate Time   `json:"submissionDate"`
	Score          string `json:"score"`
}

type leaderboard struct {
	Submissions []LeaderboardEntry `json:"submissions" validate:"dive"`
}

// SubmitResult is the API's answer to a competition submission.
type SubmitResult struct {
	Message string `json:"message"`
	Ref     int64  `json:"ref,omitempty"`
	URL     string `json:"url,omitempty"`
}

// submitLocation names where a submission file is uploaded.
type submitLocation struct {
	CreateURL string `json:"createUrl" validate:"required"`
}

// UploadResult carries the token for a file uploaded to a competition.
type UploadResult struct {
	Token string `json:"token" validate:"required"`
}

// Tag classifies datasets, competitions and kernels.
type Tag struct {
	Ref              string  `json:"ref"`
	Name             string  `json:"name"`
	FullPath         string  `json:"fullPath"`
	Description      *string `json:"description"`
	IsAutomatic      bool    `json:"isAutomatic"`
	CompetitionCount int64   `json:"competitionCount"`
	DatasetCount     int64   `json:"datasetCount"`
	ScriptCount      int64   `json:"scriptCount"`
	TotalCount       int64   `json:"totalCount"`
}

// Dataset is a Kaggle dataset as listed or viewed by the API.
type Dataset struct {
	ID                   int64            `json:"id"`
	Ref                  string           `json:"ref" validate:"required"`
	Title                string           `json:"title"`
	Subtitle             string           `json:"subtitle"`
	Description          *string          `json:"description"`
	URL                  string           `json:"url"`
	Tags                 []Tag            `json:"tags"`
	CreatorName          string           `json:"creatorName"`
	CreatorURL           *string          `json:"creatorUrl"`
	OwnerName            string           `json:"ownerName"`
	OwnerRef             string           `json:"ownerRef"`
	TotalBytes           int64            `json:"totalBytes"`
	LastUpdated          Time             `json:"lastUpdated"`
	DownloadCount        int64            `json:"downloadCount"`
	IsPrivate            bool             `json:"isPrivate"`
	IsReviewed           bool             `json:"isReviewed"`
	IsFeatured           bool             `json:"isFeatured"`
	LicenseName          *string          `json:"licenseName"`
	KernelCount          int64            `json:"kernelCount"`
	TopicCount           int64            `json:"topicCount"`
	ViewCount            int64            `json:"viewCount"`
	VoteCount            int64            `json:"voteCount"`
	CurrentVersionNumber int64            `json:"currentVersionNumber"`
	UsabilityRating      float64          `json:"usabilityRating"`
	Files                []File           `json:"files"`
	Versions             []DatasetVersion `json:"versions"`
}

// Slug returns the dataset's owner/name reference.
func (d Dataset) Slug() (Slug, error) {
	return ParseSlug(d.Ref)
}

// DatasetVersion describes one published version of a dataset.
type DatasetVersion struct {
	VersionNumber int64  `json:"versionNumber"`
	CreationDate  Time   `json:"creationDate"`
	CreatorName   string `json:"creatorName"`
	CreatorRef    string `json:"creatorRef"`
	VersionNotes  string `json:"versionNotes"`
	Status        string `json:"status"`
}

// DatasetStatus is the processing state of a dataset, e.g. "ready".
type DatasetStatus string

// Known dataset states.
const (
	DatasetReady   DatasetStatus = "ready"
	DatasetPending DatasetStatus = "pending"
	DatasetError   DatasetStatus = "error"
)

// DatasetMetadata is the editable metadata of a dataset.
type DatasetMetadata struct {
	DatasetID       int64          `json:"datasetId"`
	DatasetSlug     string         `json:"datasetSlug" validate:"required"`
	OwnerUser       any            `json:"ownerUser"`
	Title           string         `json:"title"`
	Subtitle        string         `json:"subtitle"`
	Description     string         `json:"description"`
	IsPrivate       bool           `json:"isPrivate"`
	UsabilityRating float64        `json:"usabilityRating"`
	TotalViews      int64          `json:"totalViews"`
	TotalVotes      int64          `json:"totalVotes"`
	TotalDownloads  int64          `json:"totalDownloads"`
	Licenses        []License      `json:"licenses"`
	Keywords        []string       `json:"keywords"`
	Collaborators   []Collaborator `json:"collaborators"`
	Data            []MetadataData `json:"data"`
}

// MetadataData describes one file inside [DatasetMetadata].
type MetadataData struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	TotalBytes  int64           `json:"totalBytes"`
	Columns     []DatasetColumn `json:"columns"`
}

// License names a dataset license, e.g. "CC0-1.0".
type License struct {
	Name string `json:"name" validate:"required"`
}

// Collaborator grants a user a role on a dataset.
type Collaborator struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=reader writer"`
}

// DatasetColumn describes a column of a tabular file.
type DatasetColumn struct {
	Order        *float64 `json:"order,omitempty"`
	Name         string   `json:"name,omitempty"`
	Type         string   `json:"type,omitempty"`
	OriginalType string   `json:"originalType,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// File is a file belonging to a dataset or competition.
type File struct {
	Ref          string          `json:"ref"`
	Name         string          `json:"name" validate:"required"`
	CreationDate Time            `json:"creationDate"`
	DatasetRef   *string         `json:"datasetRef"`
	Description  *string         `json:"description"`
	FileType     *string         `json:"fileType"`
	OwnerRef     *string         `json:"ownerRef"`
	TotalBytes   int64           `json:"totalBytes"`
	URL          string          `json:"url"`
	Columns      []DatasetColumn `json:"columns"`
}

// ListFilesResult lists the files of a dataset.
type ListFilesResult struct {
	ErrorMessage *string `json:"errorMessage"`
	DatasetFiles []File  `json:"datasetFiles" validate:"dive"`
}

// FileUploadInfo tells the caller where to send file bytes and which
// token identifies them afterwards.
type FileUploadInfo struct {
	Token     string `json:"token" validate:"required"`
	CreateURL string `json:"createUrl" validate:"required,url"`
}

// DatasetNewResponse reports the outcome of creating a dataset or version.
type DatasetNewResponse struct {
	Ref         *string `json:"ref"`
	URL         string  `json:"url"`
	Status      string  `json:"status" validate:"required"`
	Error       *string `json:"error"`
	InvalidTags []any   `json:"invalidTags"`
}

// OK reports whether the API accepted the request.
func (r DatasetNewResponse) OK() bool {
	return r.Status == "ok"
}

func (r DatasetNewResponse) err() error {
	if r.OK() {
		return nil
	}

	cause := r.Status
	if r.Error != nil && *r.Error != "" {
		cause = *r.Error
	}

	return fmt.Errorf("%w: %s", ErrRejected, cause)
}

// Kernel is a notebook or script as listed by the API.
type Kernel struct {
	ID                     int64    `json:"id"`
	Ref                    string   `json:"ref" validate:"required"`
	Title                  string   `json:"title"`
	Author                 string   `json:"author"`
	Slug                   *string  `json:"slug"`
	LastRunTime            Time     `json:"lastRunTime"`
	Language               *string  `json:"language"`
	KernelType             *string  `json:"kernelType"`
	IsPrivate              *bool    `json:"isPrivate"`
	EnableGPU              *bool    `json:"enableGpu"`
	EnableInternet         *bool    `json:"enableInternet"`
	CategoryIDs            []string `json:"categoryIds"`
	DatasetDataSources     []string `json:"datasetDataSources"`
	KernelDataSources      []string `json:"kernelDataSources"`
	CompetitionDataSources []string `json:"competitionDataSources"`
	TotalVotes             int64    `json:"totalVotes"`
}

// KernelPullResponse holds a kernel's metadata and source.
type KernelPullResponse struct {
	Metadata Kernel     `json:"metadata"`
	Blob     KernelBlob `json:"blob"`
}

// KernelBlob is the source of a pulled kernel.
type KernelBlob struct {
	KernelType PushKernelType `json:"kernelType"`
	Language   string         `json:"language"`
	Slug       string         `json:"slug" validate:"required"`
	Source     string         `json:"source"`
}

// CodeFileName is the conventional file name for the kernel's source,
// e.g. "my-kernel.ipynb". It is empty when the language has no known
// extension.
func (r KernelPullResponse) CodeFileName() string {
	ext := r.Blob.KernelType.Ext(PushLanguage(r.Blob.Language))
	if ext == "" {
		return ""
	}

	return r.Blob.Slug + ext
}

// KernelPushResponse reports the outcome of pushing a kernel.
type KernelPushResponse struct {
	Ref                       string   `json:"ref"`
	URL                       string   `json:"url"`
	VersionNumber             int64    `json:"versionNumber"`
	Error                     string   `json:"error"`
	InvalidTags               []string `json:"invalidTags"`
	InvalidDatasetSources     []string `json:"invalidDatasetSources"`
	InvalidCompetitionSources []string `json:"invalidCompetitionSources"`
	InvalidKernelSources      []string `json:"invalidKernelSources"`
}

// KernelStatus is the run state of a kernel's latest version.
type KernelStatus struct {
	Status         string `json:"status" validate:"required"`
	FailureMessage string `json:"failureMessage"`
}

// KernelOutput lists the files and log produced by a kernel run.
type KernelOutput struct {
	Files []KernelOutputFile `json:"files" validate:"dive"`
	Log   *string            `json:"log"`
}

// KernelOutputFile is one output file and where to fetch it.
type KernelOutputFile struct {
	FileName string    `json:"fileName" validate:"required"`
	URL      OutputURL `json:"url"`
}

// OutputURL is the download location of a kernel output file. The API
// sends either a plain string or an object with a "content" field.
type OutputURL string

func (u *OutputURL) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*u = OutputURL(obj.Content)
		return nil
	}

	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s != nil {
		*u = OutputURL(*s)
	}

	return nil
}
