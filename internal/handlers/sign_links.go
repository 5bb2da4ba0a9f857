package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignLinkHandler serves the public, token-authenticated signing page.
type SignLinkHandler struct {
	signing SignLinkWorkflow
	logger  *zap.Logger
}

func NewSignLinkHandler(signing SignLinkWorkflow, logger *zap.Logger) *SignLinkHandler {
	return &SignLinkHandler{signing: signing, logger: logger}
}

func (h *SignLinkHandler) Get(c *gin.Context) {
	link, err := h.signing.FetchByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"data": link})
}

func (h *SignLinkHandler) Sign(c *gin.Context) {
	contract, err := h.signing.Sign(c.Request.Context(), c.Param("token"), signerIP(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message": "Contract signed successfully",
		"data":    contract,
	})
}
