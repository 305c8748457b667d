package data

import "fmt"

type QueryParams struct {
	Query          string
	Page           int
	PageLimit      int
	SortBy         SortField
	SortOrder      SortOrder
	IncludeDeleted bool
	Filters        map[FilterKey]interface{}
}

type SortOrder string

const (
	SortOrderASC  SortOrder = "ASC"
	SortOrderDESC SortOrder = "DESC"
)

type SortField string

const (
	SortFieldName      SortField = "name"
	SortFieldCode      SortField = "code"
	SortFieldEmail     SortField = "email"
	SortFieldSlug      SortField = "slug"
	SortFieldStatus    SortField = "status"
	SortFieldStartDate SortField = "start_date"
	SortFieldCreatedAt SortField = "created_at"
	SortFieldUpdatedAt SortField = "updated_at"
)

type FilterKey string

const (
	FilterKeyStatus         FilterKey = "status"
	FilterKeyTenantID       FilterKey = "tenant_id"
	FilterKeyUserID         FilterKey = "user_id"
	FilterKeyRole           FilterKey = "role"
	FilterKeyPlan           FilterKey = "plan"
	FilterKeyLifecycleStage FilterKey = "lifecycle_stage"
	FilterKeyIsDefault      FilterKey = "is_default"
)

func (fk FilterKey) Equals() string {
	return fmt.Sprintf("%s = ?", fk)
}
