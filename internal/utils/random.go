package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

var positions = []string{
	"Security Analyst",
	"SOC Lead",
	"Security Engineer",
	"Threat Hunter",
	"Incident Responder",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的前若干个字母，再拼上 1~3 位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomPhone() string {
	return fmt.Sprintf("555-%03d-%04d", rand.Intn(1000), rand.Intn(10000))
}

// 只在 active 和 pto_soon 之间随机，生成的成员都可以被排班
func GenerateRandomStatus() domain.TeamMemberStatus {
	if rand.Intn(5) == 0 {
		return domain.StatusPTOSoon
	}
	return domain.StatusActive
}

func GenerateRandomTeamMember(emailDomainName string) *domain.TeamMember {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	phone := GenerateRandomPhone()

	return &domain.TeamMember{
		Name:     fullName,
		Position: positions[rand.Intn(len(positions))],
		Email:    username + "@" + emailDomainName,
		Phone:    &phone,
		Status:   GenerateRandomStatus(),
	}
}

// GenerateUserForTeamMember 为成员生成登录账号，用户名取邮箱 @ 之前的部分
func GenerateUserForTeamMember(member *domain.TeamMember, password string) (*domain.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username := member.Email
	for i, c := range member.Email {
		if c == '@' {
			username = member.Email[:i]
			break
		}
	}

	return &domain.User{
		Username: username,
		Password: string(passwordHash),
	}, nil
}
