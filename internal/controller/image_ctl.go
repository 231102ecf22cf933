package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/api/dto"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
)

// ImageController 生图与图片分析
type ImageController struct {
	imageService    *service.ImageService
	analysisService *service.AnalysisService
}

func NewImageController(imageService *service.ImageService, analysisService *service.AnalysisService) *ImageController {
	return &ImageController{imageService: imageService, analysisService: analysisService}
}

// GenerateImage 生成营销图
// 同步阻塞直到轮询结束，调用方的超时需大于 MaxAttempts x Interval
// @Summary 生成营销图片
// @Tags Image
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "生图选项"
// @Router /api/generate-image [post]
func (ctrl *ImageController) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}
	// options 缺失时按空选项处理，由服务层先检查配置再校验
	var opts model.ImageGenerationOptions
	if req.Options != nil {
		opts = *req.Options
	}

	result, err := ctrl.imageService.Generate(c.Request.Context(), opts, req.Product)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, result)
}

// AnalyzeImage 分析商品图片
// @Summary 识别商品图卖点、关键词与视觉特征
// @Tags Image
// @Accept json
// @Produce json
// @Param body body dto.AnalyzeImageRequest true "商品与图片"
// @Router /api/analyze-image [post]
func (ctrl *ImageController) AnalyzeImage(c *gin.Context) {
	var req dto.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	result, err := ctrl.analysisService.Analyze(c.Request.Context(), req.Product, req.ImageIndex, req.Base64Image)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, result)
}
