package web

import (
	"net/url"

	vm "github.com/ericfisherdev/itempanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// Notice keys carried in the list redirect after a form closes.
const (
	noticeCreated   = "created"
	noticeExists    = "exists"
	noticeUpdated   = "updated"
	noticeUnchanged = "unchanged"
	noticeDeleted   = "deleted"
	noticeMissing   = "missing"
	noticeStale     = "stale"
)

var noticeMessages = map[string]string{
	noticeCreated:   "Item created.",
	noticeExists:    "An item with that code already exists; nothing was written.",
	noticeUpdated:   "Item updated.",
	noticeUnchanged: "Description unchanged; nothing was written.",
	noticeDeleted:   "Item deleted.",
	noticeMissing:   "That item no longer exists.",
	noticeStale:     "That form is no longer open; nothing was written.",
}

// noticeMessage returns the text for a notice key, or "" for unknown keys.
func noticeMessage(key string) string {
	return noticeMessages[key]
}

// itemPath returns the edit form path for code.
func itemPath(code string) string {
	return "/items/" + url.PathEscape(code)
}

// toRowViewModels converts list rows to RowViewModels. The description is
// rendered as inline markdown.
func toRowViewModels(rows []model.ListRow) []vm.RowViewModel {
	vms := make([]vm.RowViewModel, 0, len(rows))
	for _, row := range rows {
		vms = append(vms, vm.RowViewModel{
			Code:            row.Code,
			DescriptionHTML: RenderDescription(row.Description),
			EditPath:        itemPath(row.Code),
		})
	}
	return vms
}

// newFormViewModel returns an empty new-record form.
func newFormViewModel(csrf string) vm.FormViewModel {
	return vm.FormViewModel{
		IsNew:                true,
		CodeMaxLength:        model.CodeMaxLength,
		DescriptionMaxLength: model.DescriptionMaxLength,
		Action:               "/items",
		CSRFToken:            csrf,
	}
}

// editFormViewModel returns the edit form for a loaded item. The code is
// shown read-only.
func editFormViewModel(item model.Item, csrf string) vm.FormViewModel {
	path := itemPath(item.Code)
	return vm.FormViewModel{
		Code:                 item.Code,
		Description:          item.Description,
		CodeMaxLength:        model.CodeMaxLength,
		DescriptionMaxLength: model.DescriptionMaxLength,
		Action:               path,
		DeleteAction:         path + "/delete",
		CSRFToken:            csrf,
	}
}

// applyValidation copies per-field messages onto the form.
func applyValidation(form *vm.FormViewModel, verr *application.ValidationError) {
	fields := verr.Fields()
	form.CodeError = fields["code"]
	form.DescriptionError = fields["desc"]
}
