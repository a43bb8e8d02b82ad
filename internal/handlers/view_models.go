package handlers

import (
	"time"

	"chorequest/internal/models"
)

// View models shape the JSON the API returns. Internal fields like password
// hashes and kid credentials never cross this boundary.

type userView struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}

type authView struct {
	User      userView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type familyView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

func newFamilyView(f *models.Family) familyView {
	return familyView{ID: f.ID, Name: f.Name, JoinCode: f.JoinCode, IsDefault: f.IsDefault, CreatedAt: f.CreatedAt}
}

type memberView struct {
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Permission string    `json:"permission"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type familyDetailView struct {
	Family  familyView   `json:"family"`
	Members []memberView `json:"members"`
	Kids    []kidView    `json:"kids"`
}

func newFamilyDetailView(fm *models.FamilyWithMembers, kids []models.Kid, gemRatio int) familyDetailView {
	view := familyDetailView{
		Family:  newFamilyView(&fm.Family),
		Members: make([]memberView, 0, len(fm.Members)),
		Kids:    make([]kidView, 0, len(kids)),
	}
	for i, m := range fm.Members {
		mv := memberView{
			UserID:     m.UserID,
			Role:       string(m.Role),
			Permission: string(m.Permission),
			JoinedAt:   m.JoinedAt,
		}
		if i < len(fm.Users) {
			mv.Name = fm.Users[i].Name
			mv.Email = fm.Users[i].Email
		}
		view.Members = append(view.Members, mv)
	}
	for i := range kids {
		view.Kids = append(view.Kids, newKidView(&kids[i], gemRatio))
	}
	return view
}

type kidView struct {
	ID          int64     `json:"id"`
	FamilyID    *int64    `json:"familyId,omitempty"`
	Name        string    `json:"name"`
	AvatarColor string    `json:"avatarColor"`
	TotalPoints int       `json:"totalPoints"`
	Gems        int       `json:"gems"`
	Stars       int       `json:"stars"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newKidView(k *models.Kid, gemRatio int) kidView {
	gems := models.SplitGems(k.TotalPoints, gemRatio)
	return kidView{
		ID:          k.ID,
		FamilyID:    k.FamilyID,
		Name:        k.Name,
		AvatarColor: k.AvatarColor,
		TotalPoints: k.TotalPoints,
		Gems:        gems.Gems,
		Stars:       gems.Stars,
		CreatedAt:   k.CreatedAt,
	}
}

type kidStatsView struct {
	Kid            kidView `json:"kid"`
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	CompletedTasks int     `json:"completedTasks"`
}

func newKidStatsView(s *models.KidWithStats, gemRatio int) kidStatsView {
	return kidStatsView{
		Kid:            newKidView(&s.Kid, gemRatio),
		CurrentStreak:  s.CurrentStreak,
		LongestStreak:  s.LongestStreak,
		CompletedTasks: s.CompletedTasks,
	}
}

type taskView struct {
	ID                int64      `json:"id"`
	KidID             int64      `json:"kidId"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	PointValue        int        `json:"pointValue"`
	State             string     `json:"state"`
	IsKidRequest      bool       `json:"isKidRequest"`
	RequestStatus     string     `json:"requestStatus"`
	FeedbackRequested bool       `json:"feedbackRequested"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ProofImageURL     string     `json:"proofImageUrl,omitempty"`
	CompletionNote    string     `json:"completionNote,omitempty"`
	ParentComment     string     `json:"parentComment,omitempty"`
	Recurrence        string     `json:"recurrence,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func newTaskView(t *models.Task) taskView {
	return taskView{
		ID:                t.ID,
		KidID:             t.KidID,
		Title:             t.Title,
		Description:       t.Description,
		PointValue:        t.PointValue,
		State:             string(t.State()),
		IsKidRequest:      t.IsKidRequest,
		RequestStatus:     string(t.RequestStatus),
		FeedbackRequested: t.FeedbackRequested,
		CompletedAt:       t.CompletedAt,
		ProofImageURL:     t.ProofImageURL,
		CompletionNote:    t.CompletionNote,
		ParentComment:     t.ParentComment,
		Recurrence:        t.Recurrence,
		CreatedAt:         t.CreatedAt,
	}
}

func newTaskViews(tasks []models.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, newTaskView(&tasks[i]))
	}
	return views
}

type milestoneView struct {
	Claimed  bool `json:"claimed"`
	Eligible bool `json:"eligible"`
}

type streakView struct {
	KidID          int64                    `json:"kidId"`
	CurrentStreak  int                      `json:"currentStreak"`
	LongestStreak  int                      `json:"longestStreak"`
	LastActiveDate *time.Time               `json:"lastActiveDate,omitempty"`
	Milestones     map[string]milestoneView `json:"milestones"`
}

func newStreakView(s *models.Streak) streakView {
	view := streakView{
		KidID:         s.KidID,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		Milestones:    make(map[string]milestoneView, 3),
	}
	if !s.LastActiveDate.IsZero() {
		d := s.LastActiveDate
		view.LastActiveDate = &d
	}
	for _, m := range []models.Milestone{models.MilestoneWeek, models.MilestoneMonth, models.MilestoneQuarter} {
		view.Milestones[string(m)] = milestoneView{
			Claimed:  s.Claimed(m),
			Eligible: s.CurrentStreak >= m.Threshold() && !s.Claimed(m),
		}
	}
	return view
}

type pointLogView struct {
	ID        int64     `json:"id"`
	OldPoints int       `json:"oldPoints"`
	NewPoints int       `json:"newPoints"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func newPointLogView(l *models.PointLog) pointLogView {
	return pointLogView{
		ID:        l.ID,
		OldPoints: l.OldPoints,
		NewPoints: l.NewPoints,
		Delta:     l.Delta(),
		Reason:    l.Reason,
		CreatedAt: l.CreatedAt,
	}
}

type balanceView struct {
	KidID       int64 `json:"kidId"`
	TotalPoints int   `json:"totalPoints"`
	Gems        int   `json:"gems"`
	Stars       int   `json:"stars"`
}

type completionView struct {
	Task         taskView   `json:"task"`
	PointsEarned int        `json:"pointsEarned"`
	NewBalance   int        `json:"newBalance"`
	Gems         int        `json:"gems"`
	Stars        int        `json:"stars"`
	Streak       streakView `json:"streak"`
}

type rewardRequestView struct {
	ID        int64     `json:"id"`
	KidID     int64     `json:"kidId"`
	Title     string    `json:"title"`
	PointCost int       `json:"pointCost"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func newRewardRequestView(r *models.RewardRequest) rewardRequestView {
	return rewardRequestView{
		ID:        r.ID,
		KidID:     r.KidID,
		Title:     r.Title,
		PointCost: r.PointCost,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

type redemptionView struct {
	ID          int64     `json:"id"`
	KidID       int64     `json:"kidId"`
	Title       string    `json:"title"`
	PointsSpent int       `json:"pointsSpent"`
	RedeemedAt  time.Time `json:"redeemedAt"`
}

type invitationView struct {
	Code        string    `json:"code"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permission  string    `json:"permission"`
	InviterName string    `json:"inviterName,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func newInvitationView(i *models.Invitation) invitationView {
	return invitationView{
		Code:        i.Code,
		Email:       i.Email,
		Role:        string(i.Role),
		Permission:  string(i.Permission),
		InviterName: i.InviterName,
		ExpiresAt:   i.ExpiresAt,
	}
}
