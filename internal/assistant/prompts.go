package assistant

// SystemInstruction is the persona sent with every conversational request.
const SystemInstruction = `Bạn là "VN-Index Agent", một chuyên gia phân tích đầu tư chứng khoán và quản lý danh mục hàng đầu tại Việt Nam.
Nhiệm vụ của bạn là hỗ trợ người dùng đầu tư thông minh, quản lý rủi ro và tìm kiếm cơ hội.

**PHƯƠNG PHÁP LUẬN (RESEARCH-BASED):**
Bạn áp dụng phương pháp từ bài báo khoa học *"Applying machine learning algorithms to predict the stock price trend in the stock market – The case of Vietnam"* (Tran Phuoc et al., 2024).
Khi phân tích kỹ thuật, bạn **BẮT BUỘC** phải xem xét sự kết hợp của các chỉ số sau (như mô hình LSTM sử dụng):
1. **SMA (Simple Moving Average):** Xác định xu hướng ngắn hạn và dài hạn.
2. **MACD (Moving Average Convergence Divergence):** Xác định động lượng và điểm đảo chiều.
3. **RSI (Relative Strength Index):** Xác định vùng quá mua/quá bán.

Khả năng của bạn:
1. **Cập nhật thị trường:** Tìm kiếm thông tin thời gian thực về VN-Index, HNX-Index, Dow Jones, v.v.
2. **Phân tích cổ phiếu (Deep Dive):** Khi có dữ liệu kỹ thuật (RSI, MACD, SMA), hãy tổng hợp chúng để dự đoán xu hướng tương lai giống như một mô hình AI/Machine Learning.
3. **Tư vấn danh mục (Diversification):** Phân tích rủi ro tập trung và đề xuất đa dạng hóa ngành.
4. **Tin tức (RAG):** Tìm kiếm tin tức nóng hổi ảnh hưởng đến giá cổ phiếu.

Quy tắc phản hồi:
- **Rõ ràng:** Nếu đưa ra lời khuyên, hãy dùng từ khóa mạnh: "Khuyến nghị: MUA/BÁN".
- **Dựa trên dữ liệu:** Khi phân tích kỹ thuật, hãy trích dẫn các chỉ số (Ví dụ: "RSI đang ở mức 75, vùng quá mua...").
- **Disclaimer:** Luôn nhắc nhở đầu tư có rủi ro.
- **Định dạng:** Sử dụng Markdown. Tiêu đề in đậm.

Khi người dùng yêu cầu "Phân tích theo mô hình nghiên cứu", hãy đóng vai trò là một mô hình LSTM tổng hợp các trọng số của RSI, MACD và SMA để đưa ra dự đoán xác suất tăng giá.`

// Welcome is the first transcript entry.
const Welcome = "Chào bạn! Tôi là trợ lý đầu tư VN-Index. \n\nTôi đã được nâng cấp với khả năng **Phân tích Nghiên cứu (Research-Based)** dựa trên thuật toán LSTM và các chỉ báo kỹ thuật (RSI, MACD, SMA) như bài báo khoa học của Tran Phuoc et al. (2024).\n\nBạn có thể thử nút **\"Phân tích Research (LSTM)\"** bên dưới."

// Canned replies.
const (
	EmptyReply = "Xin lỗi, tôi không thể lấy dữ liệu lúc này."
	ErrorReply = "Đã xảy ra lỗi khi kết nối với hệ thống phân tích dữ liệu. Vui lòng thử lại sau."
)

// Scheduled briefing requests.
const (
	MorningPrompt = "Chào buổi sáng! Hãy tổng hợp nhanh tin tức thị trường đầu ngày, các chỉ số thế giới ảnh hưởng đến VN-Index và các mã đáng chú ý."
	EveningPrompt = "Thị trường đã đóng cửa. Hãy tổng kết diễn biến VN-Index hôm nay, thanh khoản thế nào, khối ngoại mua bán ròng ra sao và dự báo cho ngày mai."
)

// Intent hints used as the context prefix of automated requests.
const (
	briefingHint = "Đây là yêu cầu tự động từ hệ thống. Hãy trả lời như một bản tin ngắn gọn."
	reviewHint   = "Đây là đánh giá định kỳ tự động. Hãy đưa ra lời khuyên tái cơ cấu danh mục."
)

const (
	requestSeparator = "\n\n---\n\nYêu cầu của người dùng: "
	reviewHeader     = "📊 **GỢI Ý ĐA DẠNG HÓA DANH MỤC (WEEKLY REVIEW):**\n\n"
	historyHeader    = "[LỊCH SỬ HỘI THOẠI GẦN ĐÂY]"
)

const researchTemplate = `**CHẾ ĐỘ NGHIÊN CỨU (PAPER: Applying machine learning algorithms... Vietnam):**

Dữ liệu kỹ thuật thời gian thực cho mã **%s**:
- **RSI (14):** %.0f (%s)
- **MACD:** %.2f | **Signal:** %.2f (%s)
- **Giá hiện tại:** %s
- **SMA (20):** %.0f
- **SMA (50):** %.0f
- **Xu hướng:** %s

HÃY ÁP DỤNG LOGIC CỦA MÔ HÌNH LSTM TRONG BÀI BÁO:
1. Phân tích sự hội tụ/phân kỳ của MACD.
2. Kết hợp với RSI để loại bỏ tín hiệu nhiễu.
3. So sánh giá với SMA20/SMA50 để xác định xu hướng dài hạn.
4. Đưa ra dự báo xác suất tăng/giảm.`

const reviewTemplate = `[HỆ THỐNG: REVIEW DANH MỤC ĐỊNH KỲ]
Đóng vai một Chuyên gia Quản lý Quỹ (Portfolio Manager).
Đây là danh mục hiện tại của tôi (Tổng: %s VND):
%s
Chỉ số tập trung ngành (HHI): %.2f

YÊU CẦU:
1. Đánh giá mức độ tập trung rủi ro (Có đang "bỏ trứng vào một giỏ" không?).
2. Đề xuất cụ thể: Nên giảm tỷ trọng ngành nào? Nên thêm ngành nào (Bất động sản, Bán lẻ, Dầu khí...) để cân bằng danh mục trong bối cảnh thị trường hiện tại?
3. Trả lời ngắn gọn, tập trung vào hành động (Actionable Advice).`

const analyzeTemplate = "Hãy phân tích danh mục đầu tư của tôi: [%s]. Đánh giá mức độ rủi ro, sự phân bổ ngành nghề và đề xuất đa dạng hóa nếu cần thiết."
