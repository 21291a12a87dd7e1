package utils

import (
	"fmt"
	"math/rand"

	"github.com/palmcourt/hotel-admin/internal/domain"
)

// 种子数据用到的分类和菜名
var SeedCategoryDishes = map[string][]string{
	"Starters":    {"Paneer Tikka", "Hara Bhara Kebab", "Chicken 65", "Crispy Corn", "Fish Amritsari"},
	"Burgers":     {"Classic Veg Burger", "Smoked Chicken Burger", "Aloo Tikki Burger", "Lamb Burger"},
	"Main Course": {"Dal Makhani", "Butter Chicken", "Palak Paneer", "Mutton Rogan Josh", "Veg Biryani"},
	"Desserts":    {"Gulab Jamun", "Rasmalai", "Chocolate Brownie", "Kulfi Falooda"},
	"Beverages":   {"Masala Chai", "Cold Coffee", "Fresh Lime Soda", "Mango Lassi"},
	"Salads":      {"Greek Salad", "Caesar Salad", "Kachumber", "Quinoa Bowl"},
}

var SeedCategoryOrder = []string{"Starters", "Burgers", "Main Course", "Desserts", "Beverages", "Salads"}

var chefNotes = []string{
	"",
	"Chef special",
	"Live counter from 7pm",
	"Festival menu",
	"Limited portions",
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")
var digits = "0123456789"

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(52)] // 只取字母部分
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomSpiceLevel() domain.SpiceLevel {
	return domain.SpiceLevels[rand.Intn(len(domain.SpiceLevels))]
}

func GenerateRandomMenuItem(category *domain.Category, name string) *domain.MenuItem {
	return &domain.MenuItem{
		Name:            name,
		Category:        domain.CategoryRef{ID: category.ID, Name: category.Name},
		BasePrice:       float64(rand.Intn(40)+5) * 10, // 50 ~ 440
		IsVeg:           rand.Intn(3) > 0,
		PreparationTime: (rand.Intn(12) + 1) * 5, // 5 ~ 60 分钟
		SpiceLevel:      GenerateRandomSpiceLevel(),
		IsAvailable:     true,
		Images:          []string{},
		Description:     fmt.Sprintf("House %s prepared fresh daily", name),
	}
}

func GenerateRandomNotes() string {
	return chefNotes[rand.Intn(len(chefNotes))]
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集，至少包含一个元素
func GenerateRandomSubset(arr []string) []string {
	if len(arr) == 0 {
		return []string{}
	}

	arrCopy := append([]string{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}
