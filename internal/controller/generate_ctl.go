package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/api/dto"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
)

// ==================== 控制器 ====================

// GenerateController 标题与卖点生成
type GenerateController struct {
	copyService *service.CopyService
}

func NewGenerateController(copyService *service.CopyService) *GenerateController {
	return &GenerateController{copyService: copyService}
}

// ==================== API 方法 ====================

// Generate 批量生成
// @Summary 批量生成商品标题与卖点
// @Tags Generate
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "商品列表"
// @Success 200 {object} dto.GenerateResponse
// @Router /api/generate [post]
func (ctrl *GenerateController) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}
	if len(req.Products) == 0 {
		respondBadRequest(c, "No products provided")
		return
	}

	results := ctrl.copyService.GenerateBatch(c.Request.Context(), req.Products, nil)

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Success: true,
		Results: results,
	})
}

// GenerateFromTemplate 基于模板生成
// @Summary 模板渲染标题与卖点，模板为空时调用 AI
// @Tags Generate
// @Accept json
// @Produce json
// @Param body body dto.TemplateGenerateRequest true "商品与模板"
// @Router /api/generate/template [post]
func (ctrl *GenerateController) GenerateFromTemplate(c *gin.Context) {
	var req dto.TemplateGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}
	if req.Product == nil {
		respondBadRequest(c, "No product provided")
		return
	}

	respondResult(c, ctrl.copyService.GenerateFromTemplate(c.Request.Context(), req.Product, req.Template))
}
