package subnet

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RealIPHeader заголовок, из которого берётся адрес клиента
const RealIPHeader = "X-Real-IP"

// TrustedSubnetMiddleware пропускает только запросы из доверенной подсети.
//
// Адрес клиента берётся из заголовка X-Real-IP. Пустая или невалидная
// подсеть закрывает доступ всем.
//
// Пример использования:
//
//	r.GET("/metrics", subnet.TrustedSubnetMiddleware("10.0.0.0/8"), gin.WrapH(promhttp.Handler()))
func TrustedSubnetMiddleware(trustedSubnet string) gin.HandlerFunc {
	if trustedSubnet == "" {
		return deny("доверенная подсеть не настроена")
	}

	// CIDR парсится один раз
	_, ipNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		zap.L().Error("невалидный CIDR", zap.String("subnet", trustedSubnet), zap.Error(err))
		return deny("невалидный CIDR")
	}

	return func(c *gin.Context) {
		realIP := c.GetHeader(RealIPHeader)
		ip := net.ParseIP(realIP)
		if ip == nil {
			zap.L().Debug("доступ запрещен: нет валидного X-Real-IP", zap.String("ip", realIP))
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		if !ipNet.Contains(ip) {
			zap.L().Debug("доступ запрещен: IP вне доверенной подсети",
				zap.String("ip", realIP),
				zap.String("subnet", trustedSubnet),
			)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}

func deny(reason string) gin.HandlerFunc {
	return func(c *gin.Context) {
		zap.L().Debug("доступ запрещен", zap.String("reason", reason))
		c.AbortWithStatus(http.StatusForbidden)
	}
}
