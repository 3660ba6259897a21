package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// createDocument 创建带初始版本的受控文档
func (e *testEnv) createDocument(t *testing.T, docType string) *service.DocumentDetail {
	detail, err := e.documents.Create(context.Background(), e.creator, &model.DocumentModel{
		Type:         docType,
		Name:         "Equipment Cleaning Procedure",
		DepartmentID: e.prodDept.ID,
	}, service.VersionInput{
		Purpose: "define cleaning steps",
		Scope:   "all production equipment",
		Content: "1. Rinse with purified water ...",
	})
	require.NoError(t, err)
	return detail
}

// approveVersion 把版本推进到 approved
func (e *testEnv) approveVersion(t *testing.T, versionID string) {
	ctx := context.Background()
	_, err := e.documents.SubmitVersion(ctx, e.creator, versionID)
	require.NoError(t, err)
	_, err = e.documents.ReviewVersion(ctx, e.reviewer, versionID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	_, err = e.documents.ApproveVersion(ctx, e.approver, versionID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
}

// TestDocumentService_CreateWithInitialVersion 测试创建文档带 1.0 初始版本
func TestDocumentService_CreateWithInitialVersion(t *testing.T) {
	env := newTestEnv(t)
	detail := env.createDocument(t, model.DocTypeProcedure)

	assert.Equal(t, "PRO-PRO001", detail.Document.DocumentNumber)
	require.Len(t, detail.Versions, 1)
	assert.Equal(t, "1.0", detail.Versions[0].VersionNumber)
	assert.Equal(t, model.VersionDraft, detail.Versions[0].Status)

	// 非法文档类型
	var svcErr *service.Error
	_, err := env.documents.Create(context.Background(), env.creator, &model.DocumentModel{
		Type:         "record",
		Name:         "x",
		DepartmentID: env.prodDept.ID,
	}, service.VersionInput{Content: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestDocumentService_VersionNumbering 测试版本号递增
func TestDocumentService_VersionNumbering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	detail := env.createDocument(t, model.DocTypeManual)

	v, err := env.documents.CreateVersion(ctx, env.creator, detail.Document.ID, service.VersionInput{
		Content: "revision A",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.1", v.VersionNumber)

	v, err = env.documents.CreateVersion(ctx, env.creator, detail.Document.ID, service.VersionInput{
		Content:     "revision B",
		VersionType: model.VersionBumpMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, "2.0", v.VersionNumber)

	v, err = env.documents.CreateVersion(ctx, env.creator, detail.Document.ID, service.VersionInput{
		Content: "revision C",
	})
	require.NoError(t, err)
	assert.Equal(t, "2.1", v.VersionNumber)

	var svcErr *service.Error
	_, err = env.documents.CreateVersion(ctx, env.creator, detail.Document.ID, service.VersionInput{
		Content:     "x",
		VersionType: "patch",
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestDocumentService_VersionLifecycle 测试版本评审审批链
func TestDocumentService_VersionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	detail := env.createDocument(t, model.DocTypePolicy)
	versionID := detail.Versions[0].ID

	v, err := env.documents.SubmitVersion(ctx, env.creator, versionID)
	require.NoError(t, err)
	assert.Equal(t, model.VersionUnderReview, v.Status)
	require.NotNil(t, v.SubmittedAt)

	// 评审拒绝回到草稿,评审意见落库
	v, err = env.documents.ReviewVersion(ctx, env.reviewer, versionID, service.ReviewInput{
		Approve: false, Comments: "scope section incomplete",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VersionDraft, v.Status)
	require.Len(t, v.Reviews, 1)
	assert.Equal(t, "scope section incomplete", v.Reviews[0].Comment)

	// 再次提交并走完审批
	env.approveVersion(t, versionID)
	v, err = env.documents.GetVersion(ctx, versionID)
	require.NoError(t, err)
	assert.Equal(t, model.VersionApproved, v.Status)
	assert.Equal(t, env.approver.UserID, v.ApprovedBy)
}

// TestDocumentService_SingleApprovedVersion 测试同文档至多一个生效版本
func TestDocumentService_SingleApprovedVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	detail := env.createDocument(t, model.DocTypeWorkInstruction)

	env.approveVersion(t, detail.Versions[0].ID)

	v2, err := env.documents.CreateVersion(ctx, env.creator, detail.Document.ID, service.VersionInput{
		Content: "updated instruction",
	})
	require.NoError(t, err)
	env.approveVersion(t, v2.ID)

	// 旧版本归档,新版本生效
	got, err := env.documents.Get(ctx, detail.Document.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ApprovedVersion)
	assert.Equal(t, v2.ID, got.ApprovedVersion.ID)

	old, err := env.documents.GetVersion(ctx, detail.Versions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.VersionArchived, old.Status)
}

// TestDocumentService_LifecycleGuards 测试版本状态与角色守卫
func TestDocumentService_LifecycleGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	detail := env.createDocument(t, model.DocTypeProcedure)
	versionID := detail.Versions[0].ID

	var svcErr *service.Error

	// 草稿状态不能评审
	_, err := env.documents.ReviewVersion(ctx, env.reviewer, versionID, service.ReviewInput{Approve: true})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	// 非作者不能提交
	_, err = env.documents.SubmitVersion(ctx, env.reviewer, versionID)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	_, err = env.documents.SubmitVersion(ctx, env.creator, versionID)
	require.NoError(t, err)

	// 非 Reviewer 不能评审
	_, err = env.documents.ReviewVersion(ctx, env.creator, versionID, service.ReviewInput{Approve: true})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	_, err = env.documents.ReviewVersion(ctx, env.reviewer, versionID, service.ReviewInput{Approve: true})
	require.NoError(t, err)

	// 非 Approver 不能审批
	_, err = env.documents.ApproveVersion(ctx, env.reviewer, versionID, service.ReviewInput{Approve: true})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	// 审批拒绝回到草稿
	v, err := env.documents.ApproveVersion(ctx, env.approver, versionID, service.ReviewInput{Approve: false})
	require.NoError(t, err)
	assert.Equal(t, model.VersionDraft, v.Status)
}

// TestDocumentService_List 测试文档列表过滤
func TestDocumentService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createDocument(t, model.DocTypeProcedure)
	env.createDocument(t, model.DocTypeManual)

	docType := model.DocTypeManual
	docs, err := env.documents.List(ctx, &repository.DocumentFilter{Type: &docType})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, model.DocTypeManual, docs[0].Type)

	all, err := env.documents.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
