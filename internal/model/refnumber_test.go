package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// setupModelTestDB 创建模型测试数据库
func setupModelTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.DepartmentModel{},
		&model.DeviationModel{},
		&model.CAPAModel{},
		&model.ChangeControlModel{},
		&model.DocumentModel{},
		&model.DocumentVersionModel{},
	)
	require.NoError(t, err)
	return db
}

func createDept(t *testing.T, db *gorm.DB, name string) *model.DepartmentModel {
	dept := &model.DepartmentModel{Name: name}
	require.NoError(t, db.Create(dept).Error)
	return dept
}

// TestDepartmentPrefix 测试部门引用编号前缀生成
func TestDepartmentPrefix(t *testing.T) {
	db := setupModelTestDB(t)

	dept := createDept(t, db, "Quality Assurance")
	assert.Equal(t, "QUA", dept.Prefix)

	// 名称含非字母字符时跳过
	dept2 := createDept(t, db, "R&D Lab")
	assert.Equal(t, "RDL", dept2.Prefix)

	// 前缀冲突时追加随机数字后缀
	dept3 := createDept(t, db, "Quarantine")
	assert.NotEqual(t, "QUA", dept3.Prefix)
	assert.Len(t, dept3.Prefix, 6)
	assert.Equal(t, "QUA", dept3.Prefix[:3])
}

// TestDeviationNumber 测试偏差编号按部门递增
func TestDeviationNumber(t *testing.T) {
	db := setupModelTestDB(t)
	qa := createDept(t, db, "Quality Assurance")
	prod := createDept(t, db, "Production")

	d1 := &model.DeviationModel{DepartmentID: qa.ID, Description: "temperature excursion"}
	require.NoError(t, db.Create(d1).Error)
	assert.Equal(t, "QUA-DEV001", d1.DeviationNumber)

	d2 := &model.DeviationModel{DepartmentID: qa.ID, Description: "mislabeled batch"}
	require.NoError(t, db.Create(d2).Error)
	assert.Equal(t, "QUA-DEV002", d2.DeviationNumber)

	// 序号按部门独立
	d3 := &model.DeviationModel{DepartmentID: prod.ID, Description: "line stoppage"}
	require.NoError(t, db.Create(d3).Error)
	assert.Equal(t, "PRO-DEV001", d3.DeviationNumber)

	// 部门不存在时创建失败
	bad := &model.DeviationModel{DepartmentID: "missing", Description: "x"}
	assert.Error(t, db.Create(bad).Error)
}

// TestCAPANumber 测试 CAPA 编号在父偏差编号后递增
func TestCAPANumber(t *testing.T) {
	db := setupModelTestDB(t)
	qa := createDept(t, db, "Quality Assurance")

	d := &model.DeviationModel{DepartmentID: qa.ID, Description: "deviation"}
	require.NoError(t, db.Create(d).Error)

	c1 := &model.CAPAModel{DeviationID: d.ID, DepartmentID: qa.ID}
	require.NoError(t, db.Create(c1).Error)
	assert.Equal(t, "QUA-DEV001-CAPA01", c1.CAPANumber)

	c2 := &model.CAPAModel{DeviationID: d.ID, DepartmentID: qa.ID}
	require.NoError(t, db.Create(c2).Error)
	assert.Equal(t, "QUA-DEV001-CAPA02", c2.CAPANumber)
}

// TestChangeNumber 测试变更控制编号
func TestChangeNumber(t *testing.T) {
	db := setupModelTestDB(t)
	eng := createDept(t, db, "Engineering")

	cc := &model.ChangeControlModel{DepartmentID: eng.ID, Description: "replace pump seal"}
	require.NoError(t, db.Create(cc).Error)
	assert.Equal(t, "ENG-CC001", cc.ChangeNumber)
}

// TestDocumentNumber 测试文档编号按部门和类型独立递增
func TestDocumentNumber(t *testing.T) {
	db := setupModelTestDB(t)
	qa := createDept(t, db, "Quality Assurance")

	sop := &model.DocumentModel{Type: model.DocTypeProcedure, Name: "Cleaning SOP", DepartmentID: qa.ID, CreatedBy: "u1"}
	require.NoError(t, db.Create(sop).Error)
	assert.Equal(t, "QUA-PRO001", sop.DocumentNumber)

	wi := &model.DocumentModel{Type: model.DocTypeWorkInstruction, Name: "Balance WI", DepartmentID: qa.ID, CreatedBy: "u1"}
	require.NoError(t, db.Create(wi).Error)
	assert.Equal(t, "QUA-WI001", wi.DocumentNumber)

	sop2 := &model.DocumentModel{Type: model.DocTypeProcedure, Name: "Sampling SOP", DepartmentID: qa.ID, CreatedBy: "u1"}
	require.NoError(t, db.Create(sop2).Error)
	assert.Equal(t, "QUA-PRO002", sop2.DocumentNumber)
}

// TestAffectedItemValid 测试受影响对象变体校验
func TestAffectedItemValid(t *testing.T) {
	cases := []struct {
		item  model.AffectedItem
		valid bool
	}{
		{model.AffectedItem{}, true},
		{model.AffectedItem{ItemType: model.ItemTypeProduct, ItemName: "Aspirin 100mg"}, true},
		{model.AffectedItem{ItemType: model.ItemTypeProduct}, false},
		{model.AffectedItem{ItemType: model.ItemTypeMaterial, ItemName: "API lot", ItemBatch: "B42"}, true},
		{model.AffectedItem{ItemType: model.ItemTypeEquipment, ItemRefID: "eq-1"}, true},
		{model.AffectedItem{ItemType: model.ItemTypeEquipment}, false},
		{model.AffectedItem{ItemType: "facility"}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.valid, c.item.Valid(), "%+v", c.item)
	}
}

// TestNextVersionNumber 测试文档版本号递增
func TestNextVersionNumber(t *testing.T) {
	n, err := model.NextVersionNumber("1.0", model.VersionBumpMinor)
	require.NoError(t, err)
	assert.Equal(t, "1.1", n)

	n, err = model.NextVersionNumber("1.9", model.VersionBumpMinor)
	require.NoError(t, err)
	assert.Equal(t, "1.10", n)

	n, err = model.NextVersionNumber("1.4", model.VersionBumpMajor)
	require.NoError(t, err)
	assert.Equal(t, "2.0", n)

	_, err = model.NextVersionNumber("v1", model.VersionBumpMinor)
	assert.Error(t, err)
}
