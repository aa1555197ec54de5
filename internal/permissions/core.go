package permissions

// Document permission codes. The document access strategy maps these onto
// per-document assignments; everything else about them is ordinary coarse
// authority carried by roles.
const (
	DocView           = "DOC:VIEW"
	DocViewLogged     = "DOC:VIEW_LOGGED"
	DocDownload       = "DOC:DOWNLOAD"
	DocEdit           = "DOC:EDIT"
	DocPublish        = "DOC:PUBLISH"
	DocManageComments = "DOC:MANAGE_COMMENTS"
	DocApprove        = "DOC:APPROVE"
)

// Cache management codes gate the cache introspection and eviction surface.
// They are deliberately disjoint from the document codes.
const (
	CacheMonitor = "CACHE:MONITOR"
	CacheManage  = "CACHE:MANAGE"
)

func init() {
	defs := []*Definition{
		{
			Code:        DocView,
			Module:      "document",
			Description: "View published documents",
		},
		{
			Code:        DocViewLogged,
			Module:      "document",
			Description: "View documents with access logging",
		},
		{
			Code:        DocDownload,
			Module:      "document",
			Description: "Download document content",
		},
		{
			Code:        DocEdit,
			Module:      "document",
			Description: "Edit document content",
		},
		{
			Code:        DocPublish,
			Module:      "document",
			Description: "Publish document revisions",
		},
		{
			Code:        DocManageComments,
			Module:      "document",
			Description: "Moderate document comments",
		},
		{
			Code:        DocApprove,
			Module:      "document",
			Description: "Approve documents for release",
		},
		{
			Code:        CacheMonitor,
			Module:      "cache",
			Description: "Read permission cache statistics and configuration",
		},
		{
			Code:        CacheManage,
			Module:      "cache",
			Description: "Evict permission cache entries",
		},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
