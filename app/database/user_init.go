package database

import (
	"fmt"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/utils"
)

// InitAdminUser 按配置文件同步管理员账户：不存在则创建，用户名或密码变化则更新
func InitAdminUser(cfg *config.Config, log *logger.Logger) error {
	if cfg.Server.Username == "" || cfg.Server.Password == "" {
		log.Errorf("配置文件中未设置管理员账户，请在配置文件中设置 username 和 password")
		return fmt.Errorf("管理员账户配置不能为空，请在配置文件中设置 username 和 password")
	}

	var admin model.User
	if err := DB.Where("is_admin = ?", true).First(&admin).Error; err != nil {
		return createAdmin(cfg, log)
	}

	needUpdate := false
	if admin.Username != cfg.Server.Username {
		var conflict model.User
		if DB.Where("username = ? AND id != ?", cfg.Server.Username, admin.ID).First(&conflict).Error == nil {
			return fmt.Errorf("用户名 '%s' 已被其他用户使用，无法更新管理员用户名", cfg.Server.Username)
		}
		log.Infof("管理员用户名从 '%s' 更新为 '%s'", admin.Username, cfg.Server.Username)
		admin.Username = cfg.Server.Username
		needUpdate = true
	}

	if !utils.VerifyPassword(cfg.Server.Password, admin.Password) {
		hash, err := utils.HashPassword(cfg.Server.Password)
		if err != nil {
			return fmt.Errorf("哈希密码失败: %w", err)
		}
		admin.Password = hash
		needUpdate = true
		log.Infof("管理员 '%s' 密码已更新", cfg.Server.Username)
	}

	if !needUpdate {
		log.Debugf("管理员 '%s' 已存在，无需更新", cfg.Server.Username)
		return nil
	}
	if err := DB.Save(&admin).Error; err != nil {
		return fmt.Errorf("更新管理员账户失败: %w", err)
	}
	return nil
}

func createAdmin(cfg *config.Config, log *logger.Logger) error {
	hash, err := utils.HashPassword(cfg.Server.Password)
	if err != nil {
		return fmt.Errorf("哈希密码失败: %w", err)
	}

	admin := model.User{
		Username: cfg.Server.Username,
		Password: hash,
		IsActive: true,
		IsAdmin:  true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("创建管理员账户失败: %w", err)
	}

	log.Infof("管理员账户 '%s' 创建成功", cfg.Server.Username)
	return nil
}
