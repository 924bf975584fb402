package kaggle

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/adamwoolhether/kaggle/validate"
)

// CompetitionGroup filters competitions by the caller's relation to them.
type CompetitionGroup string

const (
	CompetitionGroupGeneral CompetitionGroup = "general"
	CompetitionGroupEntered CompetitionGroup = "entered"
	CompetitionGroupInClass CompetitionGroup = "inClass"
)

// CompetitionCategory filters competitions by category.
type CompetitionCategory string

const (
	CompetitionCategoryAll            CompetitionCategory = "all"
	CompetitionCategoryFeatured       CompetitionCategory = "featured"
	CompetitionCategoryResearch       CompetitionCategory = "research"
	CompetitionCategoryRecruitment    CompetitionCategory = "recruitment"
	CompetitionCategoryGettingStarted CompetitionCategory = "gettingStarted"
	CompetitionCategoryMasters        CompetitionCategory = "masters"
	CompetitionCategoryPlayground     CompetitionCategory = "playground"
)

// CompetitionSortBy orders competition listings.
type CompetitionSortBy string

const (
	CompetitionSortGrouped          CompetitionSortBy = "grouped"
	CompetitionSortPrize            CompetitionSortBy = "prize"
	CompetitionSortEarliestDeadline CompetitionSortBy = "earliestDeadline"
	CompetitionSortLatestDeadline   CompetitionSortBy = "latestDeadline"
	CompetitionSortNumberOfTeams    CompetitionSortBy = "numberOfTeams"
	CompetitionSortRecentlyCreated  CompetitionSortBy = "recentlyCreated"
)

// DatasetGroup selects whose datasets are listed.
type DatasetGroup string

const (
	DatasetGroupPublic DatasetGroup = "public"
	DatasetGroupMine   DatasetGroup = "my"
	DatasetGroupUser   DatasetGroup = "user"
)

// DatasetFileType filters datasets by the type of files they contain.
type DatasetFileType string

const (
	DatasetFileTypeAll      DatasetFileType = "all"
	DatasetFileTypeCSV      DatasetFileType = "csv"
	DatasetFileTypeSQLite   DatasetFileType = "sqlite"
	DatasetFileTypeJSON     DatasetFileType = "json"
	DatasetFileTypeBigQuery DatasetFileType = "bigQuery"
)

// DatasetLicense filters datasets by license family.
type DatasetLicense string

const (
	DatasetLicenseAll   DatasetLicense = "all"
	DatasetLicenseCC    DatasetLicense = "cc"
	DatasetLicenseGPL   DatasetLicense = "gpl"
	DatasetLicenseODB   DatasetLicense = "odb"
	DatasetLicenseOther DatasetLicense = "other"
)

// DatasetSortBy orders dataset listings.
type DatasetSortBy string

const (
	DatasetSortHottest   DatasetSortBy = "hottest"
	DatasetSortVotes     DatasetSortBy = "votes"
	DatasetSortUpdated   DatasetSortBy = "updated"
	DatasetSortActive    DatasetSortBy = "active"
	DatasetSortPublished DatasetSortBy = "published"
)

// KernelGroup selects whose kernels are listed.
type KernelGroup string

const (
	KernelGroupEveryone KernelGroup = "everyone"
	KernelGroupProfile  KernelGroup = "profile"
	KernelGroupUpvoted  KernelGroup = "upvoted"
)

// Language filters kernels by language.
type Language string

const (
	LanguageAll    Language = "all"
	LanguagePython Language = "python"
	LanguageR      Language = "r"
	LanguageSQLite Language = "sqlite"
	LanguageJulia  Language = "julia"
)

// KernelType filters kernels by kind.
type KernelType string

const (
	KernelTypeAll      KernelType = "all"
	KernelTypeScript   KernelType = "script"
	KernelTypeNotebook KernelType = "notebook"
)

// OutputType filters kernels by the output they produce.
type OutputType string

const (
	OutputTypeAll           OutputType = "all"
	OutputTypeVisualization OutputType = "visualization"
	OutputTypeData          OutputType = "data"
)

// KernelSortBy orders kernel listings.
type KernelSortBy string

const (
	KernelSortHotness         KernelSortBy = "hotness"
	KernelSortCommentCount    KernelSortBy = "commentCount"
	KernelSortDateCreated     KernelSortBy = "dateCreated"
	KernelSortDateRun         KernelSortBy = "dateRun"
	KernelSortRelevance       KernelSortBy = "relevance"
	KernelSortScoreAscending  KernelSortBy = "scoreAscending"
	KernelSortScoreDescending KernelSortBy = "scoreDescending"
	KernelSortViewCount       KernelSortBy = "viewCount"
	KernelSortVoteCount       KernelSortBy = "voteCount"
)

// PushKernelType is the kind of a kernel being pushed or pulled.
type PushKernelType string

const (
	PushKernelScript   PushKernelType = "script"
	PushKernelNotebook PushKernelType = "notebook"
)

// PushLanguage is the language of a kernel being pushed.
type PushLanguage string

const (
	PushLanguagePython    PushLanguage = "python"
	PushLanguageR         PushLanguage = "r"
	PushLanguageRMarkdown PushLanguage = "rmarkdown"
)

// Ext returns the source file extension for a kernel of type t written
// in lang, or "" when there is none.
func (t PushKernelType) Ext(lang PushLanguage) string {
	switch t {
	case PushKernelScript:
		switch lang {
		case PushLanguagePython:
			return ".py"
		case PushLanguageR:
			return ".R"
		case PushLanguageRMarkdown:
			return ".Rmd"
		}
	case PushKernelNotebook:
		switch lang {
		case PushLanguagePython:
			return ".ipynb"
		case PushLanguageR:
			return ".irnb"
		}
	}

	return ""
}

// CompetitionListOptions filters [Client.ListCompetitions].
// Zero values are left to the API's defaults.
type CompetitionListOptions struct {
	Group    CompetitionGroup    `json:"group" validate:"omitempty,oneof=general entered inClass"`
	Category CompetitionCategory `json:"category" validate:"omitempty,oneof=all featured research recruitment gettingStarted masters playground"`
	SortBy   CompetitionSortBy   `json:"sortBy" validate:"omitempty,oneof=grouped prize earliestDeadline latestDeadline numberOfTeams recentlyCreated"`
	Search   string              `json:"search"`
	Page     int                 `json:"page" validate:"gte=0"`
}

func (o CompetitionListOptions) values() (url.Values, error) {
	if err := validate.Check(o); err != nil {
		return nil, err
	}

	q := pageQuery(o.Page)
	set(q, "group", string(o.Group))
	set(q, "category", string(o.Category))
	set(q, "sortBy", string(o.SortBy))
	set(q, "search", o.Search)

	return q, nil
}

// DatasetListOptions filters [Client.ListDatasets].
// Setting User without Group lists that user's datasets.
type DatasetListOptions struct {
	Group    DatasetGroup    `json:"group" validate:"omitempty,oneof=public my user"`
	SortBy   DatasetSortBy   `json:"sortBy" validate:"omitempty,oneof=hottest votes updated active published"`
	FileType DatasetFileType `json:"filetype" validate:"omitempty,oneof=all csv sqlite json bigQuery"`
	License  DatasetLicense  `json:"license" validate:"omitempty,oneof=all cc gpl odb other"`
	TagIDs   []string        `json:"tagids" validate:"dive,required"`
	Search   string          `json:"search"`
	User     string          `json:"user" validate:"required_if=Group user"`
	Page     int             `json:"page" validate:"gte=0"`
	MinSize  int64           `json:"minSize" validate:"gte=0"`
	MaxSize  int64           `json:"maxSize" validate:"omitempty,gtefield=MinSize"`
}

func (o DatasetListOptions) values() (url.Values, error) {
	if err := validate.Check(o); err != nil {
		return nil, err
	}

	group := o.Group
	if group == "" && o.User != "" {
		group = DatasetGroupUser
	}

	q := pageQuery(o.Page)
	set(q, "group", string(group))
	set(q, "sortBy", string(o.SortBy))
	set(q, "filetype", string(o.FileType))
	set(q, "license", string(o.License))
	set(q, "tagids", strings.Join(o.TagIDs, ","))
	set(q, "search", o.Search)
	set(q, "user", o.User)
	setInt(q, "minSize", o.MinSize)
	setInt(q, "maxSize", o.MaxSize)

	return q, nil
}

// KernelListOptions filters [Client.ListKernels].
type KernelListOptions struct {
	Page         int          `json:"page" validate:"gte=0"`
	PageSize     int          `json:"pageSize" validate:"gte=0,lte=100"`
	Search       string       `json:"search"`
	Group        KernelGroup  `json:"group" validate:"omitempty,oneof=everyone profile upvoted"`
	User         string       `json:"user"`
	Language     Language     `json:"language" validate:"omitempty,oneof=all python r sqlite julia"`
	KernelType   KernelType   `json:"kernelType" validate:"omitempty,oneof=all script notebook"`
	OutputType   OutputType   `json:"outputType" validate:"omitempty,oneof=all visualization data"`
	SortBy       KernelSortBy `json:"sortBy" validate:"omitempty,oneof=hotness commentCount dateCreated dateRun relevance scoreAscending scoreDescending viewCount voteCount"`
	Dataset      string       `json:"dataset" validate:"omitempty,slug"`
	Competition  string       `json:"competition"`
	ParentKernel string       `json:"parentKernel" validate:"omitempty,slug"`
}

func (o KernelListOptions) values() (url.Values, error) {
	if err := validate.Check(o); err != nil {
		return nil, err
	}

	q := pageQuery(o.Page)
	setInt(q, "pageSize", int64(o.PageSize))
	set(q, "search", o.Search)
	set(q, "group", string(o.Group))
	set(q, "user", o.User)
	set(q, "language", string(o.Language))
	set(q, "kernelType", string(o.KernelType))
	set(q, "outputType", string(o.OutputType))
	set(q, "sortBy", string(o.SortBy))
	set(q, "dataset", o.Dataset)
	set(q, "competition", o.Competition)
	set(q, "parentKernel", o.ParentKernel)

	return q, nil
}

// pageQuery always carries a page, defaulting to the first.
func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}

	return url.Values{"page": {strconv.Itoa(page)}}
}

func set(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int64) {
	if value > 0 {
		q.Set(key, strconv.FormatInt(value, 10))
	}
}
