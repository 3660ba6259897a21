package repository

import "errors"

// ErrStatusConflict 状态前置条件不满足
// 条件更新未命中任何行时返回,用于并发转移请求的乐观并发控制
var ErrStatusConflict = errors.New("status precondition failed")
