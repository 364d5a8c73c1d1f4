package handlers

import (
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
)

// Page size limits shared by the collection endpoints.
var pageConfig = pagination.Config{Default: 10, Max: 25}
