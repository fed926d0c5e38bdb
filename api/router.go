package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 將所有路由掛上 router
// 除了註冊、登入與重設密碼之外的操作都需要登入
func (impl *ServerImpl) RegisterRoutes(router *gin.Engine) {
	router.Use(impl.SessionMiddleware())

	router.POST("/register", impl.Register)
	router.POST("/login", impl.Login)
	router.POST("/reset_password", impl.RequestPasswordReset)
	router.POST("/reset_password/:token", impl.ConfirmPasswordReset)

	authed := router.Group("/", impl.LoginRequired())
	authed.POST("/logout", impl.Logout)
	authed.GET("/", impl.Home)
	authed.GET("/product/:productID", impl.GetProduct)
	authed.POST("/product/new", impl.CreateProduct)
	authed.PUT("/product/:productID", impl.UpdateProduct)
	authed.DELETE("/product/:productID", impl.DeleteProduct)
	authed.GET("/user/:username", impl.UserProducts)
	authed.GET("/bid/product/:productID", impl.GetMyBid)
	authed.POST("/bid/product/:productID", impl.PlaceBid)
}
