package service

import (
	"sync"
	"time"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/internal/util"
)

type AssignmentMode string

const (
	ModeStepped AssignmentMode = "stepped" // 逐题模式，带游标
	ModeSingle  AssignmentMode = "single"  // 单页模式，所有题目同时可见
)

type AssignmentState string

const (
	StateAnswering AssignmentState = "answering"
	StateSubmitted AssignmentState = "submitted"
)

// AssignmentAnswer 单题的判分结果
type AssignmentAnswer struct {
	QuestionID     uint `json:"questionId"`
	SelectedOption int  `json:"selectedOption"`
	IsCorrect      bool `json:"isCorrect"`
}

// AssignmentResult 提交时一次性计算，之后只读
type AssignmentResult struct {
	Answers        []AssignmentAnswer `json:"answers"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"totalQuestions"`
	CompletedAt    time.Time          `json:"completedAt"`
}

// AssignmentSession 一次测验会话。题目序列固定（插入序 = 展示序），
// 答案映射每题至多一条，提交后会话转为只读。
type AssignmentSession struct {
	ID           string
	Mode         AssignmentMode
	State        AssignmentState
	Questions    []model.MCQQuestion
	Answers      map[uint]int // questionID -> 选项下标
	CurrentIndex int          // 仅 stepped 模式使用
	Result       *AssignmentResult
	CreatedAt    time.Time
	lastActive   time.Time
}

const sessionIdleExpiry = 2 * time.Hour

// AssignmentService 进程内会话注册表。每个会话由单个调用方私有持有，
// 注册表锁只保护map本身和会话的状态转移。
type AssignmentService struct {
	Repo     *repository.MCQRepository
	mu       sync.RWMutex
	sessions map[string]*AssignmentSession
}

func NewAssignmentService(repo *repository.MCQRepository) *AssignmentService {
	s := &AssignmentService{
		Repo:     repo,
		sessions: make(map[string]*AssignmentSession),
	}
	go s.sweepExpired()
	return s
}

// sweepExpired 定期清理闲置过期的会话
func (s *AssignmentService) sweepExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for id, sess := range s.sessions {
			if time.Since(sess.lastActive) > sessionIdleExpiry {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}

// CreateSession 从持久化题库建立会话。videoID 和 questionIDs 都为空时取全部题目。
func (s *AssignmentService) CreateSession(videoID uint, questionIDs []uint, mode AssignmentMode) (*AssignmentSession, error) {
	var questions []model.MCQQuestion
	var err error
	if len(questionIDs) > 0 {
		questions, err = s.Repo.FindByIDs(questionIDs)
	} else {
		questions, err = s.Repo.ListAllQuestions(videoID)
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrEmptyQuestionSet
	}

	if mode != ModeSingle {
		mode = ModeStepped
	}

	now := time.Now()
	sess := &AssignmentSession{
		ID:         model.GenerateUUID(),
		Mode:       mode,
		State:      StateAnswering,
		Questions:  questions,
		Answers:    make(map[uint]int, len(questions)),
		CreatedAt:  now,
		lastActive: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	view := sess.snapshot()
	s.mu.Unlock()

	return view, nil
}

// GetSession 返回会话的快照副本。注册表里的会话只能在持锁期间访问，
// 副本可以在锁外随意读取。
func (s *AssignmentService) GetSession(id string) (*AssignmentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrAssignmentNotFound
	}
	return sess.snapshot(), nil
}

// SelectAnswer 在 Answering 状态下记录/覆盖某题的选择，不改变状态
func (s *AssignmentService) SelectAnswer(sessionID string, questionID uint, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return util.ErrAssignmentNotFound
	}
	if sess.State != StateAnswering {
		return util.ErrAssignmentSubmitted
	}

	q := sess.findQuestion(questionID)
	if q == nil {
		return util.ErrQuestionNotInSession
	}
	if option < 0 || option >= len(q.Options) {
		return util.ErrInvalidOption
	}

	sess.Answers[questionID] = option
	sess.lastActive = time.Now()
	return nil
}

// Advance 游标前进一步。门控：当前题必须已作答；越界时夹紧到末题。
func (s *AssignmentService) Advance(sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return 0, util.ErrAssignmentNotFound
	}
	if sess.Mode != ModeStepped {
		return 0, util.ErrNotSteppedMode
	}
	if sess.State != StateAnswering {
		return sess.CurrentIndex, util.ErrAssignmentSubmitted
	}

	current := sess.Questions[sess.CurrentIndex]
	if _, answered := sess.Answers[current.ID]; !answered {
		return sess.CurrentIndex, util.ErrAnswerRequired
	}

	if sess.CurrentIndex < len(sess.Questions)-1 {
		sess.CurrentIndex++
	}
	sess.lastActive = time.Now()
	return sess.CurrentIndex, nil
}

// Retreat 游标后退一步，已在首题时为空操作
func (s *AssignmentService) Retreat(sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return 0, util.ErrAssignmentNotFound
	}
	if sess.Mode != ModeStepped {
		return 0, util.ErrNotSteppedMode
	}
	if sess.State != StateAnswering {
		return sess.CurrentIndex, util.ErrAssignmentSubmitted
	}

	if sess.CurrentIndex > 0 {
		sess.CurrentIndex--
	}
	sess.lastActive = time.Now()
	return sess.CurrentIndex, nil
}

// Submit 一次性判分并转入 Submitted。要求所有题目均已作答；
// 重复提交被拒绝，不会重新计算。结果按题目原始顺序排列。
func (s *AssignmentService) Submit(sessionID string) (*AssignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, util.ErrAssignmentNotFound
	}
	if sess.State == StateSubmitted {
		return nil, util.ErrAssignmentSubmitted
	}
	if len(sess.Answers) < len(sess.Questions) {
		return nil, util.ErrUnansweredQuestions
	}

	answers := make([]AssignmentAnswer, 0, len(sess.Questions))
	score := 0
	for _, q := range sess.Questions {
		selected, answered := sess.Answers[q.ID]
		if !answered {
			selected = -1 // 不应出现；一旦出现按答错计
		}
		isCorrect := answered && selected == q.CorrectIndex
		if isCorrect {
			score++
		}
		answers = append(answers, AssignmentAnswer{
			QuestionID:     q.ID,
			SelectedOption: selected,
			IsCorrect:      isCorrect,
		})
	}

	sess.Result = &AssignmentResult{
		Answers:        answers,
		Score:          score,
		TotalQuestions: len(sess.Questions),
		CompletedAt:    time.Now(),
	}
	sess.State = StateSubmitted
	sess.lastActive = time.Now()

	return sess.Result, nil
}

// Discard 丢弃会话（返回上传页）。任何状态下都允许，不持久化任何答案。
func (s *AssignmentService) Discard(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return util.ErrAssignmentNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// snapshot 复制会话，必须在持锁期间调用。Questions 创建后只读，
// Result 一经写入不再变更，二者可共享；Answers 会被后续操作改写，需要深拷贝。
func (sess *AssignmentSession) snapshot() *AssignmentSession {
	cp := *sess
	cp.Answers = make(map[uint]int, len(sess.Answers))
	for k, v := range sess.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

func (sess *AssignmentSession) findQuestion(questionID uint) *model.MCQQuestion {
	for i := range sess.Questions {
		if sess.Questions[i].ID == questionID {
			return &sess.Questions[i]
		}
	}
	return nil
}
