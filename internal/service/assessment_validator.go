package service

import (
	"encoding/json"
	"fmt"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
)

// AnswerInput 影响评估答案输入
// Answer 保持原始 JSON,按问题声明的答案类型严格解码:
// yes_no 只接受 JSON 布尔值,rating 只接受 1-5 的整数
type AnswerInput struct {
	QuestionID string          `json:"question_id" binding:"required"`
	Answer     json.RawMessage `json:"answer" binding:"required"`
	Comment    string          `json:"comment"`
}

// buildAssessmentAnswers 校验答案并构造答案模型
// 任一答案非法时整组失败,不做部分写入
func buildAssessmentAnswers(catalog repository.CatalogRepository, inputs []AnswerInput) ([]model.ImpactAnswerModel, error) {
	if len(inputs) == 0 {
		return nil, NewInvalid("at least one answer is required")
	}

	answers := make([]model.ImpactAnswerModel, 0, len(inputs))
	for _, in := range inputs {
		question, err := catalog.FindQuestionByID(in.QuestionID)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("question %s not found", in.QuestionID))
		}

		answer := model.ImpactAnswerModel{
			QuestionID: question.ID,
			Comment:    in.Comment,
		}

		switch question.ResponseType {
		case model.ResponseTypeYesNo:
			var b bool
			if err := json.Unmarshal(in.Answer, &b); err != nil {
				return nil, NewInvalid(fmt.Sprintf("answer for question %s must be a boolean", question.ID))
			}
			answer.AnswerBool = &b
		case model.ResponseTypeRating:
			var rating int
			if err := json.Unmarshal(in.Answer, &rating); err != nil {
				return nil, NewInvalid(fmt.Sprintf("answer for question %s must be an integer", question.ID))
			}
			if rating < 1 || rating > 5 {
				return nil, NewInvalid(fmt.Sprintf("answer for question %s must be between 1 and 5", question.ID))
			}
			answer.AnswerRating = &rating
		default:
			return nil, NewInternal(fmt.Sprintf("question %s has unknown response type %q", question.ID, question.ResponseType), nil)
		}

		answers = append(answers, answer)
	}

	return answers, nil
}
