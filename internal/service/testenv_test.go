package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/database"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// testEnv 质量记录服务测试环境
// 共享一个 sqlite 内存库,部门、用户和问题预置好,按角色提供操作者
type testEnv struct {
	db *gorm.DB

	deviations     service.DeviationService
	capas          service.CAPAService
	changeControls service.ChangeControlService
	documents      service.DocumentService
	audit          service.AuditLogService

	qaDept   *model.DepartmentModel
	prodDept *model.DepartmentModel

	creator  workflow.Actor
	reviewer workflow.Actor
	approver workflow.Actor
	member   workflow.Actor

	yesNoQuestion  *model.QuestionModel
	ratingQuestion *model.QuestionModel
}

// newTestEnv 创建服务测试环境
func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	deviationRepo := repository.NewDeviationRepository(db)
	capaRepo := repository.NewCAPARepository(db)
	ccRepo := repository.NewChangeControlRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	impactRepo := repository.NewImpactRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))

	env := &testEnv{
		db:    db,
		audit: audit,
		deviations: service.NewDeviationService(db, deviationRepo, capaRepo, teamRepo,
			impactRepo, attachmentRepo, catalogRepo, userRepo, audit, nil),
		capas: service.NewCAPAService(db, capaRepo, deviationRepo, ccRepo, teamRepo,
			attachmentRepo, userRepo, audit, nil),
		changeControls: service.NewChangeControlService(db, ccRepo, teamRepo, impactRepo,
			attachmentRepo, catalogRepo, userRepo, audit, nil),
		documents: service.NewDocumentService(db, documentRepo, audit, nil),
	}

	env.qaDept = &model.DepartmentModel{Name: workflow.QADepartmentName}
	require.NoError(t, db.Create(env.qaDept).Error)
	env.prodDept = &model.DepartmentModel{Name: "Production"}
	require.NoError(t, db.Create(env.prodDept).Error)

	creator := env.createUser(t, "creator@eqms.local", env.prodDept.ID)
	reviewer := env.createUser(t, "reviewer@eqms.local", env.prodDept.ID)
	approver := env.createUser(t, "approver@eqms.local", env.qaDept.ID)
	member := env.createUser(t, "member@eqms.local", env.prodDept.ID)

	env.creator = workflow.Actor{UserID: creator.ID, Role: workflow.RoleCreator, DepartmentID: env.prodDept.ID}
	env.reviewer = workflow.Actor{UserID: reviewer.ID, Role: workflow.RoleReviewer, DepartmentID: env.prodDept.ID}
	env.approver = workflow.Actor{UserID: approver.ID, Role: workflow.RoleApprover, DepartmentID: env.qaDept.ID, QA: true}
	env.member = workflow.Actor{UserID: member.ID, Role: workflow.RoleCreator, DepartmentID: env.prodDept.ID}

	env.yesNoQuestion = &model.QuestionModel{Text: "Does the deviation affect product quality?", ResponseType: model.ResponseTypeYesNo}
	require.NoError(t, db.Create(env.yesNoQuestion).Error)
	env.ratingQuestion = &model.QuestionModel{Text: "Rate the severity of the impact", ResponseType: model.ResponseTypeRating}
	require.NoError(t, db.Create(env.ratingQuestion).Error)

	return env
}

// createUser 创建测试用户
func (e *testEnv) createUser(t *testing.T, email string, deptID string) *model.UserModel {
	user := &model.UserModel{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		RoleID:       "role-test",
		DepartmentID: deptID,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// createDeviation 创建 Draft 偏差
func (e *testEnv) createDeviation(t *testing.T) *model.DeviationModel {
	d, err := e.deviations.Create(context.Background(), e.creator, &model.DeviationModel{
		PlannedType:  model.DeviationUnplanned,
		GMPRelevant:  true,
		DepartmentID: e.prodDept.ID,
		Description:  "temperature excursion in cold room",
	}, nil)
	require.NoError(t, err)
	return d
}

// deviationToTeamAssigned 把偏差推进到调查组已指派
func (e *testEnv) deviationToTeamAssigned(t *testing.T, id string) {
	ctx := context.Background()
	_, err := e.deviations.Submit(ctx, e.creator, id)
	require.NoError(t, err)
	_, err = e.deviations.Review(ctx, e.reviewer, id, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	_, err = e.deviations.QAReview(ctx, e.approver, id, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	_, err = e.deviations.AssignTeam(ctx, e.approver, id, service.TeamInput{MemberIDs: []string{e.member.UserID}})
	require.NoError(t, err)
}

// deviationToImpactDone 把偏差推进到影响评估完成
func (e *testEnv) deviationToImpactDone(t *testing.T, id string) {
	e.deviationToTeamAssigned(t, id)
	_, err := e.deviations.RecordImpact(context.Background(), e.member, id, []service.AnswerInput{
		{QuestionID: e.yesNoQuestion.ID, Answer: []byte(`true`)},
	})
	require.NoError(t, err)
}
