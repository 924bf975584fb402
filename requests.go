package kaggle

// DatasetUploadFile references a file previously sent with
// [Client.UploadDatasetFile] by its token.
type DatasetUploadFile struct {
	Token       string          `json:"token" validate:"required"`
	Description string          `json:"description,omitempty"`
	Columns     []DatasetColumn `json:"columns,omitempty"`
}

// DatasetNewRequest creates a dataset from uploaded files.
type DatasetNewRequest struct {
	Title        string              `json:"title" validate:"required,min=6,max=50"`
	Slug         string              `json:"slug,omitempty" validate:"omitempty,min=6,max=50"`
	OwnerSlug    string              `json:"ownerSlug,omitempty"`
	LicenseName  string              `json:"licenseName,omitempty"`
	Subtitle     string              `json:"subtitle,omitempty" validate:"omitempty,min=20,max=80"`
	Description  string              `json:"description,omitempty"`
	Files        []DatasetUploadFile `json:"files" validate:"required,min=1,dive"`
	IsPrivate    *bool               `json:"isPrivate,omitempty"`
	ConvertToCSV *bool               `json:"convertToCsv,omitempty"`
	CategoryIDs  []string            `json:"categoryIds,omitempty"`
}

// DatasetNewVersionRequest publishes a new version of an existing dataset.
type DatasetNewVersionRequest struct {
	VersionNotes      string              `json:"versionNotes" validate:"required"`
	Subtitle          string              `json:"subtitle,omitempty" validate:"omitempty,min=20,max=80"`
	Description       string              `json:"description,omitempty"`
	Files             []DatasetUploadFile `json:"files" validate:"required,min=1,dive"`
	ConvertToCSV      *bool               `json:"convertToCsv,omitempty"`
	CategoryIDs       []string            `json:"categoryIds,omitempty"`
	DeleteOldVersions bool                `json:"deleteOldVersions,omitempty"`
}

// DatasetUpdateSettingsRequest changes a dataset's metadata. Empty
// fields are left unchanged.
type DatasetUpdateSettingsRequest struct {
	Title         string         `json:"title,omitempty" validate:"omitempty,min=6,max=50"`
	Subtitle      string         `json:"subtitle,omitempty"`
	Description   string         `json:"description,omitempty"`
	IsPrivate     *bool          `json:"isPrivate,omitempty"`
	Licenses      []License      `json:"licenses,omitempty" validate:"dive"`
	Keywords      []string       `json:"keywords,omitempty"`
	Collaborators []Collaborator `json:"collaborators,omitempty" validate:"dive"`
	Data          any            `json:"data,omitempty"`
}

// KernelPushRequest uploads a new version of a kernel. Either ID or Slug
// identifies the kernel; a new Slug creates it.
type KernelPushRequest struct {
	ID                     *int64         `json:"id,omitempty"`
	Slug                   string         `json:"slug,omitempty" validate:"required_without=ID,omitempty,slug"`
	NewTitle               string         `json:"newTitle,omitempty"`
	Text                   string         `json:"text" validate:"required"`
	Language               PushLanguage   `json:"language" validate:"required,oneof=python r rmarkdown"`
	KernelType             PushKernelType `json:"kernelType" validate:"required,oneof=script notebook"`
	IsPrivate              *bool          `json:"isPrivate,omitempty"`
	EnableGPU              *bool          `json:"enableGpu,omitempty"`
	EnableInternet         *bool          `json:"enableInternet,omitempty"`
	DatasetDataSources     []string       `json:"datasetDataSources,omitempty" validate:"dive,slug"`
	CompetitionDataSources []string       `json:"competitionDataSources,omitempty" validate:"dive,required"`
	KernelDataSources      []string       `json:"kernelDataSources,omitempty" validate:"dive,slug"`
	CategoryIDs            []string       `json:"categoryIds,omitempty"`
}
